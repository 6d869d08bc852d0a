// Package metrics holds the Prometheus collectors of the gosolve service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gosolve"

// Metrics owns a registry and the collectors registered on it. Collectors
// are safe for concurrent use.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	solves        *prometheus.CounterVec
	solveErrors   *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the
// process and Go collectors, on a fresh registry. shapes and kinds are
// pre-initialized so every series is exported from the start.
func New(shapes, kinds []string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"method", "path"}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "results_total",
			Help:      "Total number of successful solves by result shape.",
		}, []string{"path", "shape"}),
		solveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "errors_total",
			Help:      "Total number of failed solves by error kind.",
		}, []string{"path", "kind"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "Duration of solves, including normalization.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}, []string{"path"}),
	}
	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.solves,
		m.solveErrors,
		m.solveDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	for _, path := range []string{"solve", "solve_system"} {
		for _, s := range shapes {
			m.solves.WithLabelValues(path, s)
		}
		for _, k := range kinds {
			m.solveErrors.WithLabelValues(path, k)
		}
	}
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest records one handled request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSolve records a successful solve.
func (m *Metrics) RecordSolve(path, shape string, duration time.Duration) {
	m.solves.WithLabelValues(path, shape).Inc()
	m.solveDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordSolveError records a failed solve. kind is the error class, such
// as "input", "parse" or a solve error kind.
func (m *Metrics) RecordSolveError(path, kind string, duration time.Duration) {
	m.solveErrors.WithLabelValues(path, kind).Inc()
	m.solveDuration.WithLabelValues(path).Observe(duration.Seconds())
}
