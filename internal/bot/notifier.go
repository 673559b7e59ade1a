package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Spok95/school-words/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// В callback_data помещается не больше 64 байт, поэтому кнопка несёт id, а не логин.
const callbackActivate = "activate:"

// Notifier сообщает администраторам о новых заявках на активацию.
// Отправка идёт в фоне: регистрация не ждёт Telegram.
type Notifier struct {
	sender   Sender
	adminIDs []int64
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewNotifier(sender Sender, adminIDs []int64, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{sender: sender, adminIDs: adminIDs, log: log}
}

func (n *Notifier) NotifySignup(_ context.Context, u *models.User) {
	if len(n.adminIDs) == 0 {
		return
	}
	user := *u
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.notify(&user)
	}()
}

// Wait дожидается уже запущенных рассылок.
func (n *Notifier) Wait() { n.wg.Wait() }

func (n *Notifier) notify(u *models.User) {
	text := fmt.Sprintf("Новая заявка:\n👤 %s (%s)\n🎓 Класс: %d", u.FullName(), u.Username, u.Grade)
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Активировать", callbackActivate+strconv.FormatInt(u.ID, 10)),
	))
	for _, id := range n.adminIDs {
		msg := tgbotapi.NewMessage(id, text)
		msg.ReplyMarkup = markup
		if _, err := send(n.sender, msg); err != nil {
			n.log.Warn("notify admin", zap.Int64("chat_id", id), zap.String("username", u.Username), zap.Error(err))
		}
	}
}
