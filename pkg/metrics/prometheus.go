// Package metrics provides Prometheus metrics for the prover service
// and the Pub/Sub test harness.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the prover pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Transport metrics - messages crossing the broker
	messagesPublished *prometheus.CounterVec
	messagesReceived  *prometheus.CounterVec
	publishErrors     *prometheus.CounterVec

	// Proof metrics - what the prover actually does
	proofRequests    prometheus.Counter
	proofLatency     prometheus.Histogram
	proofErrors      *prometheus.CounterVec
	activeProofs     prometheus.Gauge
	rejectedRequests prometheus.Counter

	// Result metrics
	resultsPublished *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "zk",
		subsystem:        "prover",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.messagesPublished = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "messages_published_total",
			Help:      "Total number of messages published, by topic",
		},
		[]string{"topic"},
	)

	m.messagesReceived = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "messages_received_total",
			Help:      "Total number of messages received, by subscription",
		},
		[]string{"subscription"},
	)

	m.publishErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "publish_errors_total",
			Help:      "Total number of failed publish attempts, by topic",
		},
		[]string{"topic"},
	)

	m.proofRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proof_requests_total",
		Help:      "Total number of proof requests accepted for processing",
	})

	m.proofLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proof_latency_milliseconds",
		Help:      "Histogram of end-to-end proof generation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.proofErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "proof_errors_total",
			Help:      "Total number of failed proof attempts, by error type",
		},
		[]string{"error_type"},
	)

	m.activeProofs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_proofs",
		Help:      "Number of proofs currently in flight (bounded by the concurrency limit)",
	})

	m.rejectedRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rejected_requests_total",
		Help:      "Total number of requests nacked because all proof slots were busy",
	})

	m.resultsPublished = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "results_published_total",
			Help:      "Total number of prover results published, by status",
		},
		[]string{"status"},
	)
}

// Package-level helpers operating on the global manager.

// RecordMessagePublished increments the publish counter for a topic.
func RecordMessagePublished(topic string) {
	globalManager.messagesPublished.WithLabelValues(topic).Inc()
}

// RecordMessageReceived increments the receive counter for a subscription.
func RecordMessageReceived(subscription string) {
	globalManager.messagesReceived.WithLabelValues(subscription).Inc()
}

// RecordPublishError increments the publish error counter for a topic.
func RecordPublishError(topic string) {
	globalManager.publishErrors.WithLabelValues(topic).Inc()
}

// RecordProofRequest increments the accepted proof request counter.
func RecordProofRequest() {
	globalManager.proofRequests.Inc()
}

// RecordProofLatency records proof generation latency in milliseconds.
func RecordProofLatency(latencyMs float64) {
	globalManager.proofLatency.Observe(latencyMs)
}

// RecordProofError increments the proof error counter for an error type.
func RecordProofError(errorType string) {
	globalManager.proofErrors.WithLabelValues(errorType).Inc()
}

// UpdateActiveProofs sets the number of proofs currently in flight.
func UpdateActiveProofs(count int) {
	globalManager.activeProofs.Set(float64(count))
}

// RecordRejectedRequest increments the counter of nacked requests.
func RecordRejectedRequest() {
	globalManager.rejectedRequests.Inc()
}

// RecordResultPublished increments the result counter for a status.
func RecordResultPublished(status string) {
	globalManager.resultsPublished.WithLabelValues(status).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
