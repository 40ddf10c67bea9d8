// Package metrics exposes Prometheus instrumentation for feature extraction.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Extraction modes used as label values.
const (
	ModeTrain   = "train"
	ModeProcess = "process"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	InstancesTotal *prometheus.CounterVec
	FeaturesTotal  *prometheus.CounterVec
	UnseenFeatures prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
	TrainDuration  prometheus.Histogram
	VocabularySize *prometheus.GaugeVec
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		InstancesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sensekit",
				Subsystem: "pipeline",
				Name:      "instances_total",
				Help:      "Total number of focus instances vectorised",
			},
			[]string{"mode"},
		),

		FeaturesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sensekit",
				Subsystem: "pipeline",
				Name:      "features_total",
				Help:      "Total number of symbolic features extracted",
			},
			[]string{"mode"},
		),

		UnseenFeatures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sensekit",
				Subsystem: "pipeline",
				Name:      "unseen_features_total",
				Help:      "Features skipped at inference because the model never saw them",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sensekit",
				Subsystem: "pipeline",
				Name:      "errors_total",
				Help:      "Total number of failed extractions",
			},
			[]string{"mode"},
		),

		TrainDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sensekit",
				Subsystem: "pipeline",
				Name:      "train_duration_seconds",
				Help:      "Duration of batch feature training in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		VocabularySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sensekit",
				Subsystem: "model",
				Name:      "vocabulary_size",
				Help:      "Number of entries in the feature model",
			},
			[]string{"vocabulary"},
		),
	}
}

// Register adds every collector to r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.InstancesTotal,
		m.FeaturesTotal,
		m.UnseenFeatures,
		m.ErrorsTotal,
		m.TrainDuration,
		m.VocabularySize,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveInstance records one vectorised instance and its feature count.
func (m *Metrics) ObserveInstance(mode string, features int) {
	if m == nil {
		return
	}
	m.InstancesTotal.WithLabelValues(mode).Inc()
	m.FeaturesTotal.WithLabelValues(mode).Add(float64(features))
}

// ObserveUnseen records features dropped at inference.
func (m *Metrics) ObserveUnseen(n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnseenFeatures.Add(float64(n))
}

// ObserveError records a failed extraction.
func (m *Metrics) ObserveError(mode string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(mode).Inc()
}

// ObserveTraining records a completed training run and the resulting sizes.
func (m *Metrics) ObserveTraining(d time.Duration, features, labels int) {
	if m == nil {
		return
	}
	m.TrainDuration.Observe(d.Seconds())
	m.VocabularySize.WithLabelValues("features").Set(float64(features))
	m.VocabularySize.WithLabelValues("labels").Set(float64(labels))
}
