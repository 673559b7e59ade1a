package ctxutil

import (
	"context"
	"time"

	"github.com/Spok95/school-words/internal/models"
)

// приватные ключи, чтобы исключить коллизии
type key int

const (
	keyUser key = iota
	keySessionID
	keyRoute
)

// WithUser /User: пользователь, прошедший проверку сессии
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

func User(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(keyUser).(*models.User)
	return u, ok && u != nil
}

// WithSessionID /SessionID: id серверной сессии (нужен для logout)
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keySessionID, id)
}

func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keySessionID).(string)
	return id, ok && id != ""
}

// WithRoute /Route: шаблон маршрута (для логов и метрик)
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, keyRoute, route)
}

func Route(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyRoute).(string)
	return s, ok
}

// Таймаут для БД.
var (
	DefaultDBTimeout = 5 * time.Second
)

// WithTimeout: удобная обёртка над context.WithTimeout.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout: стандартный таймаут для БД.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		// если у родителя осталось меньше DefaultDBTimeout: берем остаток
		remain := time.Until(dl)
		if remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
