// Package metrics exposes Prometheus instrumentation for the HTTP layer
// and the learning engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors the server registers at startup.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	InteractionsRecorded *prometheus.CounterVec
	BranchUnlocks        prometheus.Counter
	ReviewsServed        prometheus.Counter
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		InteractionsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_interactions_recorded_total",
				Help: "Total learning interactions recorded, by resulting mastery level",
			},
			[]string{"mastery_level"},
		),
		BranchUnlocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "engine_branch_unlocks_total",
				Help: "Total branch unlocks granted",
			},
		),
		ReviewsServed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "engine_reviews_served_total",
				Help: "Total review forecast requests served",
			},
		),
	}

	registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.InteractionsRecorded,
		m.BranchUnlocks,
		m.ReviewsServed,
	)

	return m
}

// Handler returns the scrape endpoint for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments request counts and latency. The endpoint label uses
// the chi route pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		endpoint := routePattern(r)
		m.RequestCounter.WithLabelValues(
			r.Method,
			endpoint,
			strconv.Itoa(recorder.status),
		).Inc()
		m.RequestDuration.WithLabelValues(
			r.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
