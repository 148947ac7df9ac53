package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	FilesExtracted       prometheus.Counter
	ObservationsProduced prometheus.Counter
	TransformErrors      prometheus.Counter
	PipelineRunning      prometheus.Gauge

	// Per-format parse outcomes, labels: format, outcome={success,error}.
	FilesParsed *prometheus.CounterVec

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rs_etl",
			Name:      "files_extracted_total",
			Help:      "Total instrument files picked up from the input directory.",
		}),
		ObservationsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rs_etl",
			Name:      "observations_produced_total",
			Help:      "Total observations written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rs_etl",
			Name:      "transform_errors_total",
			Help:      "Total files that failed to parse.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rs_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		FilesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rs_etl",
			Name:      "files_parsed_total",
			Help:      "File parse attempts by format and outcome.",
		}, []string{"format", "outcome"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rs_etl",
			Name:      "batch_size",
			Help:      "Number of files per extracted batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 50, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rs_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.FilesExtracted,
		m.ObservationsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.FilesParsed,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesExtracted:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rs_etl", Name: "files_extracted_total"}),
		ObservationsProduced:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rs_etl", Name: "observations_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rs_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rs_etl", Name: "pipeline_running"}),
		FilesParsed:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rs_etl", Name: "files_parsed_total"}, []string{"format", "outcome"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rs_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rs_etl", Name: "batch_processing_duration_seconds"}),
	}
}
