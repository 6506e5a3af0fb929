// Package metrics provides Prometheus metrics for the roster gateway and backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the collectors for one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Fetch session lifecycle, labelled by resource name.
	fetchesStarted   *prometheus.CounterVec
	fetchesApplied   *prometheus.CounterVec
	fetchesDiscarded *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec

	// Writes issued by the form, labelled by operation and outcome.
	writes *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec
	wsClients    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roster",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetchesStarted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_started_total",
		Help:      "Fetches started by resource sessions",
	}, []string{"resource"})

	m.fetchesApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_applied_total",
		Help:      "Fetch results applied to a session, by resulting status",
	}, []string{"resource", "status"})

	m.fetchesDiscarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_discarded_total",
		Help:      "Fetch results discarded because their generation was superseded",
	}, []string{"resource"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_seconds",
		Help:      "Latency of fetches issued by resource sessions",
		Buckets:   m.histogramBuckets,
	}, []string{"resource"})

	m.writes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writes_total",
		Help:      "Create, update and delete writes by outcome",
	}, []string{"operation", "outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "similar_cache_lookups_total",
		Help:      "Similarity cache lookups by result",
	}, []string{"result"})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_clients",
		Help:      "Connected view websocket clients",
	})
}

func (m *Manager) RecordFetchStarted(resource string) {
	m.fetchesStarted.WithLabelValues(resource).Inc()
}

func (m *Manager) RecordFetchApplied(resource, status string, seconds float64) {
	m.fetchesApplied.WithLabelValues(resource, status).Inc()
	m.fetchLatency.WithLabelValues(resource).Observe(seconds)
}

func (m *Manager) RecordFetchDiscarded(resource string) {
	m.fetchesDiscarded.WithLabelValues(resource).Inc()
}

func (m *Manager) RecordWrite(operation, outcome string) {
	m.writes.WithLabelValues(operation, outcome).Inc()
}

func (m *Manager) RecordHTTPRequest(route, method, statusCode string, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

func (m *Manager) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Manager) AddWSClients(delta int) {
	m.wsClients.Add(float64(delta))
}

// Package-level helpers record on the global manager.

func Global() *Manager { return globalManager }

func RecordFetchStarted(resource string) { globalManager.RecordFetchStarted(resource) }

func RecordFetchApplied(resource, status string, seconds float64) {
	globalManager.RecordFetchApplied(resource, status, seconds)
}

func RecordFetchDiscarded(resource string) { globalManager.RecordFetchDiscarded(resource) }

func RecordWrite(operation, outcome string) { globalManager.RecordWrite(operation, outcome) }

func RecordHTTPRequest(route, method, statusCode string, seconds float64) {
	globalManager.RecordHTTPRequest(route, method, statusCode, seconds)
}

func RecordCacheLookup(hit bool) { globalManager.RecordCacheLookup(hit) }

func AddWSClients(delta int) { globalManager.AddWSClients(delta) }

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
