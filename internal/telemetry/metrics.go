package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Recorder = &Metrics{}

// Metrics exposes the drive axes as Prometheus series.
type Metrics struct {
	Input       *prometheus.GaugeVec
	Output      *prometheus.GaugeVec
	Transitions *prometheus.CounterVec
}

// NewMetrics creates the drive metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Input: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drivetrain_axis_input",
				Help: "Last requested command per axis",
			},
			[]string{"axis"},
		),
		Output: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drivetrain_axis_output",
				Help: "Last rate limited command per axis",
			},
			[]string{"axis"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivetrain_limiter_transitions_total",
				Help: "Limiter calls by axis and branch taken",
			},
			[]string{"axis", "branch"},
		),
	}
	reg.MustRegister(m.Input, m.Output, m.Transitions)
	return m
}

func (m *Metrics) Record(_ context.Context, samples ...Sample) error {
	for _, s := range samples {
		m.Input.WithLabelValues(s.Axis).Set(s.Input)
		m.Output.WithLabelValues(s.Axis).Set(s.Output)
		if s.Branch != "" {
			m.Transitions.WithLabelValues(s.Axis, s.Branch).Inc()
		}
	}
	return nil
}

// Close is a no-op; the series stay registered for scraping.
func (m *Metrics) Close() error {
	return nil
}
