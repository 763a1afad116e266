package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Outcome labels shared by the auth and mood counters.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeConflict   = "conflict"
	OutcomeDenied     = "denied"
	OutcomeError      = "error"
	OutcomeCacheHit   = "hit"
	OutcomeCacheMiss  = "miss"
	OutcomeCacheError = "error"
)

type Metrics struct {
	registry       *prometheus.Registry
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authTotal      *prometheus.CounterVec
	moodSubmits    *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// New builds the collectors on a private registry so tests can create as many
// as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodboard",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "moodboard",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodboard",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Signup and login attempts by outcome",
		}, []string{"op", "outcome"}),
		moodSubmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodboard",
			Subsystem: "mood",
			Name:      "submissions_total",
			Help:      "Daily mood submissions by outcome",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodboard",
			Subsystem: "mood",
			Name:      "today_cache_lookups_total",
			Help:      "Today-entry cache lookups by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestLatency,
		m.authTotal,
		m.moodSubmits,
		m.cacheLookups,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(d.Seconds())
}

func (m *Metrics) AuthAttempt(op, outcome string) {
	if m == nil {
		return
	}
	m.authTotal.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) MoodSubmission(outcome string) {
	if m == nil {
		return
	}
	m.moodSubmits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
