package observability

import (
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hazard_engine"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline and the per-hazard predictors.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Prediction metrics.
	Predictions        *prometheus.CounterVec   // labels: hazard, mode={ensemble,fallback,default}
	PredictionDuration *prometheus.HistogramVec // labels: hazard
	PredictionFailures *prometheus.CounterVec   // labels: hazard
	MalformedFeatures  *prometheus.CounterVec   // labels: hazard
	ModelLoaded        *prometheus.GaugeVec     // labels: hazard
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry. It panics if any collector is already registered.
func NewMetrics() *Metrics {
	m := newMetrics()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		panic(err)
	}
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total feature snapshots read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total assessments written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total snapshots that could not be parsed or assessed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-assess-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served by hazard and scoring mode.",
		}, []string{"hazard", "mode"}),
		PredictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time to score one feature snapshot for one hazard.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"hazard"}),
		PredictionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Predictions that failed and were replaced by the default answer.",
		}, []string{"hazard"}),
		MalformedFeatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_features_total",
			Help:      "Snapshots whose features could not be fully engineered.",
		}, []string{"hazard"}),
		ModelLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "1 when the trained ensemble is active for the hazard, 0 in fallback mode.",
		}, []string{"hazard"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Predictions,
		m.PredictionDuration,
		m.PredictionFailures,
		m.MalformedFeatures,
		m.ModelLoaded,
	}
}

// ObservePrediction records one served prediction.
func (m *Metrics) ObservePrediction(h domain.HazardType, status domain.ModelStatus, d time.Duration) {
	m.Predictions.WithLabelValues(string(h), string(status)).Inc()
	m.PredictionDuration.WithLabelValues(string(h)).Observe(d.Seconds())
}

// ObserveMalformed counts a snapshot whose features were partly unusable.
func (m *Metrics) ObserveMalformed(h domain.HazardType) {
	m.MalformedFeatures.WithLabelValues(string(h)).Inc()
}

// ObserveFailure counts a prediction replaced by the default answer.
func (m *Metrics) ObserveFailure(h domain.HazardType) {
	m.PredictionFailures.WithLabelValues(string(h)).Inc()
}

// ObserveModelLoaded sets the model_loaded gauge for h.
func (m *Metrics) ObserveModelLoaded(h domain.HazardType, status domain.ModelStatus) {
	v := 0.0
	if status == domain.StatusEnsemble {
		v = 1
	}
	m.ModelLoaded.WithLabelValues(string(h)).Set(v)
}
