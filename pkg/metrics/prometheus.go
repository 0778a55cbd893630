// Package metrics provides Prometheus metrics for the shot group analysis
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Analysis metrics
	targetsAnalyzed    prometheus.Counter
	targetsRecorded    prometheus.Counter
	shotsRecorded      prometheus.Counter
	analysesSuppressed prometheus.Counter
	outliersFlagged    prometheus.Counter

	// History metrics
	historySize        prometheus.Gauge
	aggregationLatency prometheus.Histogram
	insightsGenerated  prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "shotgroup",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.targetsAnalyzed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "targets_analyzed_total",
		Help:      "Total number of targets run through group analysis.",
	})
	m.targetsRecorded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "targets_recorded_total",
		Help:      "Total number of analyzed targets appended to history.",
	})
	m.shotsRecorded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shots_recorded_total",
		Help:      "Total number of shots across recorded targets.",
	})
	m.analysesSuppressed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_suppressed_total",
		Help:      "Analyses withheld for insufficient data.",
	})
	m.outliersFlagged = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outliers_flagged_total",
		Help:      "Shots flagged as outliers during analysis.",
	})

	m.historySize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "history",
		Name:      "patterns",
		Help:      "Current number of stored target patterns.",
	})
	m.aggregationLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "history",
		Name:      "aggregation_duration_ms",
		Help:      "Latency of history aggregation in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.insightsGenerated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "history",
		Name:      "insights_generated_total",
		Help:      "Total number of insight payloads generated.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordTargetAnalyzed increments the analyzed-target counter.
func RecordTargetAnalyzed() {
	if globalManager.enabled {
		globalManager.targetsAnalyzed.Inc()
	}
}

// RecordTargetRecorded counts a pattern appended to history and its shots.
func RecordTargetRecorded(shots int) {
	if globalManager.enabled {
		globalManager.targetsRecorded.Inc()
		globalManager.shotsRecorded.Add(float64(shots))
	}
}

// RecordAnalysisSuppressed counts an analysis withheld for insufficient data.
func RecordAnalysisSuppressed() {
	if globalManager.enabled {
		globalManager.analysesSuppressed.Inc()
	}
}

// RecordOutliersFlagged counts shots flagged as outliers.
func RecordOutliersFlagged(count int) {
	if globalManager.enabled && count > 0 {
		globalManager.outliersFlagged.Add(float64(count))
	}
}

// UpdateHistorySize sets the stored-pattern gauge.
func UpdateHistorySize(size int) {
	if globalManager.enabled {
		globalManager.historySize.Set(float64(size))
	}
}

// RecordAggregationLatency observes one aggregation pass.
func RecordAggregationLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.aggregationLatency.Observe(latencyMs)
	}
}

// RecordInsightsGenerated increments the insight payload counter.
func RecordInsightsGenerated() {
	if globalManager.enabled {
		globalManager.insightsGenerated.Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// GetRegistry exposes the custom registry for the metrics HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
