package bot

import (
	"strings"

	"github.com/Spok95/school-words/internal/observability"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender: часть *tgbotapi.BotAPI, которой пользуется бот.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Системными считаем 5xx, 429 и таймауты. Ошибки валидации Telegram в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, marker := range []string{"429", "502", "503", "timeout"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func send(s Sender, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := s.Send(msg)
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return m, err
}

func request(s Sender, req tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r, err := s.Request(req)
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return r, err
}
