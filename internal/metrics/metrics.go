// Package metrics exposes Prometheus instrumentation for setlist generation
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bandsetlist/internal/setlist"
	"bandsetlist/shared/go/models"
)

const namespace = "bandsetlist"

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry *prometheus.Registry

	generations    *prometheus.CounterVec
	modelFailures  *prometheus.CounterVec
	setlistSongs   prometheus.Histogram
	requestsTotal  *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
}

// New registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "setlist_generations_total",
			Help:      "Setlists generated, by selection strategy.",
		}, []string{"strategy"}),
		modelFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_failures_total",
			Help:      "Model-assisted selections that fell back, by reason.",
		}, []string{"reason"}),
		setlistSongs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "setlist_songs",
			Help:      "Number of songs in generated setlists.",
			Buckets:   []float64{0, 1, 3, 5, 10, 15, 20, 30, 50},
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.generations,
		m.modelFailures,
		m.setlistSongs,
		m.requestsTotal,
		m.requestSeconds,
	)
	return m
}

// GenerationCompleted implements setlist.Recorder.
func (m *Metrics) GenerationCompleted(strategy models.Strategy, songs int) {
	m.generations.WithLabelValues(string(strategy)).Inc()
	m.setlistSongs.Observe(float64(songs))
}

// ModelFailed implements setlist.Recorder.
func (m *Metrics) ModelFailed(reason setlist.FailureReason) {
	m.modelFailures.WithLabelValues(string(reason)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Middleware tracks request counts and latency by matched route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestSeconds.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
	})
}
