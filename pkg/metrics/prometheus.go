// Package metrics provides Prometheus metrics for the lineup reveal service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the reveal service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Reveal metrics
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsRejected  *prometheus.CounterVec
	draws             *prometheus.CounterVec
	unroutedTokens    prometheus.Counter
	revealDuration    prometheus.Histogram
	revealRunning     prometheus.Gauge
	tokensOnScreen    prometheus.Gauge

	// Upstream (backend) metrics
	rosterLoads     *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByComp     *prometheus.CounterVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Websocket metrics
	wsClients  prometheus.Gauge
	wsMessages prometheus.Counter
	wsDropped  prometheus.Counter

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry the
// metrics land on prometheus.DefaultRegisterer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lineup",
		subsystem:        "reveal",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.sessionsStarted = auto.NewCounter(m.counterOpts("sessions_started_total", "Reveal sessions started"))
	m.sessionsCompleted = auto.NewCounter(m.counterOpts("sessions_completed_total", "Reveal sessions that reached Complete"))
	m.sessionsRejected = auto.NewCounterVec(m.counterOpts("sessions_rejected_total", "Generate requests that did not start a session"), []string{"reason"})
	m.draws = auto.NewCounterVec(m.counterOpts("draws_total", "Tokens drawn by destination bucket"), []string{"bucket"})
	m.unroutedTokens = auto.NewCounter(m.counterOpts("unrouted_tokens_total", "Drawn tokens with no entry in any bucket"))
	m.revealDuration = auto.NewHistogram(m.histogramOpts("duration_seconds", "Wall time of a reveal sequence",
		[]float64{0, 1, 5, 15, 30, 60, 120, 300}))
	m.revealRunning = auto.NewGauge(m.gaugeOpts("running", "1 while a reveal session is in flight"))
	m.tokensOnScreen = auto.NewGauge(m.gaugeOpts("tokens_on_screen", "Roster tokens currently visible"))

	m.rosterLoads = auto.NewCounterVec(m.counterOpts("roster_loads_total", "Roster load attempts by outcome"), []string{"outcome"})
	m.upstreamLatency = auto.NewHistogramVec(m.histogramOpts("upstream_latency_milliseconds", "Backend request latency in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "outcome"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorRateByComp = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Reveal events waiting for dispatch"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum reveal event queue capacity"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Reveal events enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Reveal events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Reveal events dropped at enqueue"))

	m.wsClients = auto.NewGauge(m.gaugeOpts("ws_clients", "Connected websocket clients"))
	m.wsMessages = auto.NewCounter(m.counterOpts("ws_messages_total", "Messages delivered to websocket clients"))
	m.wsDropped = auto.NewCounter(m.counterOpts("ws_dropped_total", "Messages dropped for slow websocket clients"))

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordSessionStarted counts a reveal session entering Running.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
	globalManager.revealRunning.Set(1)
}

// RecordSessionCompleted counts a finished reveal and its duration.
func RecordSessionCompleted(seconds float64) {
	globalManager.sessionsCompleted.Inc()
	globalManager.revealDuration.Observe(seconds)
	globalManager.revealRunning.Set(0)
}

// RecordSessionRejected counts a generate request that never started a session.
func RecordSessionRejected(reason string) {
	globalManager.sessionsRejected.WithLabelValues(reason).Inc()
}

// RecordSessionAborted clears the running gauge for a session that stopped early.
func RecordSessionAborted() {
	globalManager.revealRunning.Set(0)
}

// RecordDraw counts one drawn token by bucket name.
func RecordDraw(bucket string) {
	globalManager.draws.WithLabelValues(bucket).Inc()
}

// RecordUnroutedToken counts a drawn token absent from every bucket.
func RecordUnroutedToken() {
	globalManager.unroutedTokens.Inc()
}

// UpdateTokensOnScreen sets the number of visible roster tokens.
func UpdateTokensOnScreen(n int) {
	globalManager.tokensOnScreen.Set(float64(n))
}

// RecordRosterLoad counts a roster load attempt ("ok" or "failed").
func RecordRosterLoad(outcome string) {
	globalManager.rosterLoads.WithLabelValues(outcome).Inc()
}

// RecordUpstreamLatency records backend request latency in milliseconds.
func RecordUpstreamLatency(endpoint, outcome string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(endpoint, outcome).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComp.WithLabelValues(component, errorType).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWSClients sets the number of connected websocket clients.
func UpdateWSClients(n int) {
	globalManager.wsClients.Set(float64(n))
}

// RecordWSMessage counts a message delivered to a websocket client.
func RecordWSMessage() {
	globalManager.wsMessages.Inc()
}

// RecordWSDropped counts a message dropped for a slow websocket client.
func RecordWSDropped() {
	globalManager.wsDropped.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
