// Package metrics exposes Prometheus counters for the auth core and an HTTP
// instrumentation middleware.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	Registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Successful user registrations.",
	})

	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_refreshes_total",
			Help: "Refresh-token exchanges by outcome.",
		},
		[]string{"result"},
	)

	TokenRevocations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_token_revocations_total",
		Help: "Refresh tokens revoked at logout.",
	})
)

func Init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		LoginAttempts,
		Registrations,
		TokenRefreshes,
		TokenRevocations,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request counts and latency labeled by the chi route
// pattern, so path cardinality stays bounded.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(sw.code)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
