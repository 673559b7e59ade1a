package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/school-words/internal/ctxutil"
	"github.com/getsentry/sentry-go"
)

// заголовки, которые не должны уйти в Sentry вместе с запросом
var sensitiveHeaders = []string{"Cookie", "Authorization", "Set-Cookie"}

func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
		BeforeSend:  scrubEvent,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// scrubEvent убирает из события cookie сессии и тело запроса (там пароли и admin_key).
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	event.Request.Data = ""
	for _, h := range sensitiveHeaders {
		delete(event.Request.Headers, h)
	}
	return event
}

func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// CaptureRequestErr: то же, но с запросом и пользователем в скоупе.
func CaptureRequestErr(r *http.Request, err error) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		if route, ok := ctxutil.Route(r.Context()); ok {
			scope.SetTag("route", route)
		}
		if u, ok := ctxutil.User(r.Context()); ok {
			scope.SetUser(sentry.User{ID: strconv.FormatInt(u.ID, 10), Username: u.Username})
		}
	})
	hub.CaptureException(err)
}
