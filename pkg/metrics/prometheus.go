package metrics

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes used as label values.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport"
	OutcomeDecode    = "decode"
	OutcomeCanceled  = "canceled"
)

var knownOutcomes = map[string]struct{}{ //nolint:gochecknoglobals // fixed label set
	OutcomeSuccess:   {},
	OutcomeRejected:  {},
	OutcomeTransport: {},
	OutcomeDecode:    {},
	OutcomeCanceled:  {},
}

// Manager owns all Prometheus collectors for the wizard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Session lifecycle
	sessionsStarted prometheus.Counter
	sessionsActive  prometheus.Gauge
	sessionsExpired prometheus.Counter

	// Step flow
	stepAdvances       *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	stepRetreats       prometheus.Counter

	// Submission
	submissions       *prometheus.CounterVec
	submissionLatency prometheus.Histogram

	// Result cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardwise",
		subsystem:        "wizard",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessionsStarted = auto.NewCounter(m.counterOpts("sessions_started_total",
		"Total number of wizard sessions started"))
	m.sessionsActive = auto.NewGauge(m.gaugeOpts("sessions_active",
		"Number of wizard sessions currently held in memory"))
	m.sessionsExpired = auto.NewCounter(m.counterOpts("sessions_expired_total",
		"Total number of idle sessions removed by the sweeper"))

	m.stepAdvances = auto.NewCounterVec(m.counterOpts("step_advances_total",
		"Successful advances out of a step"), []string{"step"})
	m.validationFailures = auto.NewCounterVec(m.counterOpts("validation_failures_total",
		"Advance attempts rejected by step validation"), []string{"step"})
	m.stepRetreats = auto.NewCounter(m.counterOpts("step_retreats_total",
		"Total number of backward navigations"))

	m.submissions = auto.NewCounterVec(m.counterOpts("submissions_total",
		"Recommendation submissions by outcome"), []string{"outcome"})
	m.submissionLatency = auto.NewHistogram(m.histogramOpts("submission_latency_milliseconds",
		"Round-trip latency of recommendation submissions in milliseconds"))

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total",
		"Recommendation results served from cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total",
		"Recommendation cache lookups that missed"))
	m.cacheErrors = auto.NewCounter(m.counterOpts("cache_errors_total",
		"Recommendation cache backend failures"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP error responses by endpoint, type and severity"),
		[]string{"endpoint", "method", "error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
}

// RecordSessionStarted increments the started sessions counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// UpdateSessionsActive sets the number of live sessions.
func UpdateSessionsActive(n int) {
	globalManager.sessionsActive.Set(float64(n))
}

// RecordSessionsExpired adds n swept sessions.
func RecordSessionsExpired(n int) {
	if n > 0 {
		globalManager.sessionsExpired.Add(float64(n))
	}
}

// RecordStepAdvance counts a successful advance out of step.
func RecordStepAdvance(step int) {
	globalManager.stepAdvances.WithLabelValues(fmt.Sprint(step)).Inc()
}

// RecordValidationFailure counts a rejected advance on step.
func RecordValidationFailure(step int) {
	globalManager.validationFailures.WithLabelValues(fmt.Sprint(step)).Inc()
}

// RecordStepRetreat counts a backward navigation.
func RecordStepRetreat() {
	globalManager.stepRetreats.Inc()
}

// RecordSubmission counts a submission and observes its latency.
func RecordSubmission(outcome string, latencyMs float64) error {
	if _, ok := knownOutcomes[outcome]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	globalManager.submissions.WithLabelValues(outcome).Inc()
	globalManager.submissionLatency.Observe(latencyMs)
	return nil
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheError increments the cache error counter.
func RecordCacheError() {
	globalManager.cacheErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, method, errorType, severity string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType, severity).Inc()
}

// UpdateSystemStats samples memory and goroutine gauges.
func UpdateSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. It must run before metrics are recorded or served.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
