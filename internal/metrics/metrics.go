package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolwords", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schoolwords", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	Signups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolwords", Name: "signups_total", Help: "Created accounts",
	}, []string{"kind"})
	TranslateErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolwords", Name: "translate_upstream_errors_total", Help: "Failed calls to the translation service",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolwords", Name: "handler_errors_total", Help: "Handler errors answered with 5xx",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schoolwords", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, Signups, TranslateErrors, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func ObserveSignup(guest bool) {
	kind := "pending"
	if guest {
		kind = "guest"
	}
	Signups.WithLabelValues(kind).Inc()
}
