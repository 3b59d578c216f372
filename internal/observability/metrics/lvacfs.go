package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ModuleMetrics contains all Prometheus metrics related to the processing module binding.
type ModuleMetrics struct {
	// Operation counters
	OperationsTotal *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec

	// Performance metrics
	OperationDuration *prometheus.HistogramVec
	ProcessDuration   prometheus.Histogram

	// Current state gauges
	ModuleLoadedGauge   prometheus.Gauge
	ActiveSessionsGauge prometheus.Gauge

	registry *prometheus.Registry
}

// NewModuleMetrics creates a new instance of ModuleMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewModuleMetrics(registry *prometheus.Registry) (*ModuleMetrics, error) {
	m := &ModuleMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register module metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for ModuleMetrics.
func (m *ModuleMetrics) initMetrics() {
	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lvacfs_operations_total",
			Help: "Total number of binding operations partitioned by operation and status",
		},
		[]string{"operation", "status"},
	)

	m.ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lvacfs_errors_total",
			Help: "Total number of binding errors partitioned by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lvacfs_operation_duration_seconds",
			Help:    "Time taken by lifecycle operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		},
		[]string{"operation"},
	)

	m.ProcessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lvacfs_process_duration_seconds",
			Help:    "Time spent inside the module process call per buffer",
			Buckets: prometheus.ExponentialBuckets(BucketStart10us, BucketFactor2, BucketCount14),
		},
	)

	m.ModuleLoadedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lvacfs_module_loaded",
			Help: "Whether the processing module is loaded and fully bound (1) or not (0)",
		},
	)

	m.ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lvacfs_active_sessions",
			Help: "Number of stream sessions currently holding a module instance",
		},
	)
}

// RecordOperation implements Recorder. Lifecycle operations also drive the state gauges.
func (m *ModuleMetrics) RecordOperation(operation, status string) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()

	switch operation {
	case OpInit:
		if status == StatusSuccess {
			m.ModuleLoadedGauge.Set(1)
		} else {
			m.ModuleLoadedGauge.Set(0)
		}
	case OpDeinit:
		m.ModuleLoadedGauge.Set(0)
		m.ActiveSessionsGauge.Set(0)
	case OpSessionStart:
		if status == StatusSuccess {
			m.ActiveSessionsGauge.Inc()
		}
	case OpSessionStop:
		if status == StatusSuccess {
			m.ActiveSessionsGauge.Dec()
		}
	}
}

// RecordDuration implements Recorder.
func (m *ModuleMetrics) RecordDuration(operation string, seconds float64) {
	if operation == OpProcess {
		m.ProcessDuration.Observe(seconds)
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *ModuleMetrics) RecordError(operation, errorType string) {
	m.ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *ModuleMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.OperationsTotal.Describe(ch)
	m.ErrorsTotal.Describe(ch)
	m.OperationDuration.Describe(ch)
	ch <- m.ProcessDuration.Desc()
	ch <- m.ModuleLoadedGauge.Desc()
	ch <- m.ActiveSessionsGauge.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *ModuleMetrics) Collect(ch chan<- prometheus.Metric) {
	m.OperationsTotal.Collect(ch)
	m.ErrorsTotal.Collect(ch)
	m.OperationDuration.Collect(ch)
	ch <- m.ProcessDuration
	ch <- m.ModuleLoadedGauge
	ch <- m.ActiveSessionsGauge
}
