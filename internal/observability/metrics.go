package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zip_dispatch"

// Metrics holds the Prometheus counters, histograms, and gauges for scheme
// compilation and ZIP lookups.
type Metrics struct {
	SchemesConsumed  prometheus.Counter
	SchemesInstalled prometheus.Counter
	CompileErrors    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Index and lookup metrics.
	IndexRecords   prometheus.Gauge
	Lookups        *prometheus.CounterVec // labels: outcome={match,no_match}
	LookupCache    *prometheus.CounterVec // labels: result={hit,miss}
	LookupDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SchemesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schemes_consumed_total",
			Help:      "Total scheme uploads read from the source topic.",
		}),
		SchemesInstalled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schemes_installed_total",
			Help:      "Total compiled schemes swapped into the live index.",
		}),
		CompileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_errors_total",
			Help:      "Total scheme uploads that produced no usable records.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the scheme pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of scheme uploads per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-compile-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		IndexRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_records",
			Help:      "Number of interval records in the live index.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "ZIP lookups by outcome.",
		}, []string{"outcome"}),
		LookupCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_total",
			Help:      "Lookup cache probes by result.",
		}, []string{"result"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a single ZIP resolution.",
			Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01},
		}),
	}

	prometheus.MustRegister(
		m.SchemesConsumed,
		m.SchemesInstalled,
		m.CompileErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.IndexRecords,
		m.Lookups,
		m.LookupCache,
		m.LookupDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SchemesConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "schemes_consumed_total"}),
		SchemesInstalled:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "schemes_installed_total"}),
		CompileErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "compile_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		IndexRecords:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "index_records"}),
		Lookups:                 prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "lookups_total"}, []string{"outcome"}),
		LookupCache:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "lookup_cache_total"}, []string{"result"}),
		LookupDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "lookup_duration_seconds"}),
	}
}
