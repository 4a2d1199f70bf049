package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection.
type Collector struct {
	TicksTotal           *prometheus.CounterVec
	TickDuration         prometheus.Histogram
	DataUnavailableTotal prometheus.Counter
	WriteRejectedTotal   *prometheus.CounterVec

	ThermalConfidence prometheus.Gauge
	UsageConfidence   prometheus.Gauge
	LearningCycles    prometheus.Gauge

	EstimatedSavingsTotal prometheus.Counter
}

// NewCollector creates and registers the engine metrics.
func NewCollector(namespace string) *Collector {
	return &Collector{
		TicksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Total optimization ticks by resulting action",
			},
			[]string{"action"},
		),
		TickDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Duration of one optimization tick",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		),
		DataUnavailableTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_unavailable_total",
				Help:      "Ticks aborted or degraded because a collaborator fetch failed",
			},
		),
		WriteRejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "write_rejected_total",
				Help:      "Setpoint writes the device reported as unsuccessful",
			},
			[]string{"setpoint"},
		),
		ThermalConfidence: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "thermal_confidence",
				Help:      "Thermal model calibration confidence (0-1)",
			},
		),
		UsageConfidence: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "usage_confidence",
				Help:      "Hot-water usage profile confidence (0-100)",
			},
		),
		LearningCycles: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "learning_cycles",
				Help:      "Completed adaptive tuning cycles",
			},
		),
		EstimatedSavingsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimated_savings_total",
				Help:      "Accumulated best-effort savings estimate, observability only",
			},
		),
	}
}
