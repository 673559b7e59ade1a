package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/export"
	"github.com/Spok95/school-words/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type AdminService interface {
	SetActive(ctx context.Context, username string, active bool) (*models.User, error)
	SetActiveByID(ctx context.Context, id int64, active bool) (*models.User, error)
	ListUsers(ctx context.Context, pendingOnly bool) ([]models.User, error)
}

const helpText = `Команды администратора:
/pending — заявки, ожидающие активации
/activate <логин> — активировать аккаунт
/deactivate <логин> — отключить аккаунт
/export — выгрузка пользователей в Excel`

type Bot struct {
	sender  Sender
	admin   AdminService
	admins  map[int64]bool
	limiter *ChatLimiter
	log     *zap.Logger
	now     func() time.Time
}

func New(sender Sender, admin AdminService, adminIDs []int64, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Bot{
		sender:  sender,
		admin:   admin,
		admins:  admins,
		limiter: NewChatLimiter(),
		log:     log,
		now:     time.Now,
	}
}

// Run читает обновления, пока не закроется канал или не отменится ctx.
// Каждое обновление обрабатывается в своей горутине, команды одного чата идут по очереди.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, upd)
			}()
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic in bot handler", zap.Any("panic", r))
		}
	}()
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(ctx, upd.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	unlock := b.limiter.Lock(chatID)
	defer unlock()

	if !b.admins[chatID] {
		b.reply(chatID, "🚫 Бот доступен только администраторам.")
		return
	}
	if !msg.IsCommand() {
		b.reply(chatID, helpText)
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, helpText)
	case "pending":
		b.showPending(ctx, chatID)
	case "activate":
		b.setActive(ctx, chatID, args, true)
	case "deactivate":
		b.setActive(ctx, chatID, args, false)
	case "export":
		b.exportUsers(ctx, chatID)
	default:
		b.reply(chatID, "⚠️ Неизвестная команда. Используйте /help")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	unlock := b.limiter.Lock(chatID)
	defer unlock()

	if !b.admins[chatID] {
		_, _ = request(b.sender, tgbotapi.NewCallback(cb.ID, "Доступ закрыт"))
		return
	}
	if raw, ok := strings.CutPrefix(cb.Data, callbackActivate); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err != nil {
			b.log.Warn("bad callback data", zap.String("data", cb.Data))
		} else {
			u, err := b.admin.SetActiveByID(ctx, id, true)
			b.reportActive(chatID, raw, u, err)
		}
	}
	_, _ = request(b.sender, tgbotapi.NewCallback(cb.ID, "Обработано"))
}

func (b *Bot) showPending(ctx context.Context, chatID int64) {
	users, err := b.admin.ListUsers(ctx, true)
	if err != nil {
		b.log.Error("list pending users", zap.Error(err))
		b.reply(chatID, "Ошибка при получении заявок.")
		return
	}
	if len(users) == 0 {
		b.reply(chatID, "Заявок нет.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ожидают активации: %d\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&sb, "• %s — %s, класс %d\n", u.Username, u.FullName(), u.Grade)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) setActive(ctx context.Context, chatID int64, username string, active bool) {
	if strings.TrimSpace(username) == "" {
		b.reply(chatID, "Укажите логин: /activate <логин>")
		return
	}
	u, err := b.admin.SetActive(ctx, username, active)
	b.reportActive(chatID, username, u, err)
}

func (b *Bot) reportActive(chatID int64, ref string, u *models.User, err error) {
	switch {
	case errors.Is(err, apperr.ErrUserNotFound):
		b.reply(chatID, "Пользователь не найден.")
		return
	case err != nil:
		b.log.Error("set active from bot", zap.String("user", ref), zap.Error(err))
		b.reply(chatID, "Ошибка при изменении статуса.")
		return
	}
	b.log.Info("activation changed via bot", zap.Int64("chat_id", chatID), zap.String("username", u.Username), zap.Bool("active", u.IsActive))
	if u.IsActive {
		b.reply(chatID, "✅ "+u.Username+" активирован.")
	} else {
		b.reply(chatID, "⛔ "+u.Username+" отключён.")
	}
}

func (b *Bot) exportUsers(ctx context.Context, chatID int64) {
	users, err := b.admin.ListUsers(ctx, false)
	if err != nil {
		b.log.Error("list users for export", zap.Error(err))
		b.reply(chatID, "Ошибка при выгрузке.")
		return
	}
	data, err := export.UsersXLSX(users)
	if err != nil {
		b.log.Error("build users xlsx", zap.Error(err))
		b.reply(chatID, "Ошибка при выгрузке.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: export.UsersFilename(b.now()), Bytes: data})
	doc.Caption = fmt.Sprintf("Пользователей: %d", len(users))
	if _, err := send(b.sender, doc); err != nil {
		b.log.Warn("send export", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := send(b.sender, tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("bot reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
