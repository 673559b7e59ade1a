package httpapi

import (
	"net/http"
	"time"

	"github.com/Spok95/school-words/internal/ctxutil"
	"github.com/Spok95/school-words/internal/metrics"
	"go.uber.org/zap"
)

const healthTimeout = 800 * time.Millisecond

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxutil.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	t0 := time.Now()
	if err := a.db.Ping(ctx); err != nil {
		a.log.Warn("healthz: db ping failed", zap.Error(err))
		http.Error(w, "db not ok", http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}
