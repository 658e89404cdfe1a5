package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsTotal  *prometheus.CounterVec
	LoginAttemptsTotal *prometheus.CounterVec
	RateLimitedTotal   *prometheus.CounterVec

	// Session store metrics
	SessionOperationsTotal   *prometheus.CounterVec
	SessionOperationDuration *prometheus.HistogramVec
	SessionsRevokedTotal     prometheus.Counter
	SessionsSweptTotal       prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookshelf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_auth_attempts_total",
				Help: "Bearer authentication outcomes",
			},
			[]string{"result", "reason"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_login_attempts_total",
				Help: "Login outcomes",
			},
			[]string{"result"},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_rate_limited_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),

		SessionOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_session_operations_total",
				Help: "Session store operations",
			},
			[]string{"operation", "status"},
		),
		SessionOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookshelf_session_operation_duration_seconds",
				Help:    "Session store operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		SessionsRevokedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bookshelf_sessions_revoked_total",
				Help: "Sessions removed by logout",
			},
		),
		SessionsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bookshelf_sessions_swept_total",
				Help: "Stale sessions removed from per-user indexes",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.LoginAttemptsTotal,
		m.RateLimitedTotal,
		m.SessionOperationsTotal,
		m.SessionOperationDuration,
		m.SessionsRevokedTotal,
		m.SessionsSweptTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel prefers the mux route template so path parameters do not explode cardinality
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Use it as router middleware so the matched route is known.
func HTTPMetricsMiddleware(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(router *mux.Router, registry *prometheus.Registry) {
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
