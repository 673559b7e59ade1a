package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/ctxutil"
	"github.com/Spok95/school-words/internal/metrics"
	"github.com/Spok95/school-words/internal/observability"
	"go.uber.org/zap"
)

// HandlerFunc возвращает ошибку вместо того, чтобы писать её сам: ответ формирует handle.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wrote {
		s.status = code
		s.wrote = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wrote {
		s.wrote = true
	}
	return s.ResponseWriter.Write(b)
}

// handle: обработка ошибок, лог запроса и метрики для одного маршрута.
func (a *API) handle(route string, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctxutil.WithRoute(r.Context(), route))

		if err := h(rec, r); err != nil {
			a.handleError(rec, r, err)
		}

		d := time.Since(start)
		metrics.ObserveRequest(route, rec.status, d)
		a.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", d),
		)
	})
}

func (a *API) handleError(w *statusRecorder, r *http.Request, err error) {
	status := apperr.Status(err)
	if apperr.IsSystem(err) {
		metrics.HandlerErrors.Inc()
		observability.CaptureRequestErr(r, err)
		a.log.Error("handler failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	if w.wrote {
		// ответ уже ушёл клиенту, остаётся только лог
		return
	}
	writeJSON(w, status, errorResponse{Error: apperr.Message(err)})
}

// requireUser пускает дальше только запросы с живой сессией.
func (a *API) requireUser(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			return apperr.ErrLoginRequired
		}
		u, sess, err := a.auth.Authenticate(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, apperr.ErrLoginRequired) {
				a.clearSessionCookie(w)
			}
			return err
		}
		ctx := ctxutil.WithUser(r.Context(), u)
		ctx = ctxutil.WithSessionID(ctx, sess.ID)
		return next(w, r.WithContext(ctx))
	}
}

// requireActive: единственная проверка активации для всех контентных маршрутов.
func requireActive(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, ok := ctxutil.User(r.Context())
		if !ok {
			return apperr.ErrLoginRequired
		}
		if !u.IsActive {
			return apperr.ErrAccountInactive
		}
		return next(w, r)
	}
}

// requirePageUser: как requireUser, но анонимного отправляет на /login.
func (a *API) requirePageUser(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		err := a.requireUser(next)(w, r)
		if errors.Is(err, apperr.ErrLoginRequired) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return nil
		}
		return err
	}
}
