package observ

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one run. A nil *Metrics records
// nothing, so callers never need to check.
type Metrics struct {
	registry *prometheus.Registry

	iterations   *prometheus.CounterVec
	selected     *prometheus.CounterVec
	strategy     *prometheus.CounterVec
	strategyTime *prometheus.HistogramVec
	applied      *prometheus.CounterVec
	units        *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remedy",
			Name:      "iterations_total",
			Help:      "Remediation loop iterations per unit.",
		}, []string{"unit"}),
		selected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remedy",
			Name:      "findings_selected_total",
			Help:      "Findings selected for remediation by identifier.",
		}, []string{"id"}),
		strategy: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remedy",
			Name:      "strategy_attempts_total",
			Help:      "Strategy attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		strategyTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "remedy",
			Name:      "strategy_duration_seconds",
			Help:      "Duration of strategy attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remedy",
			Name:      "instances_fixed_total",
			Help:      "Finding instances fixed by identifier and strategy.",
		}, []string{"id", "strategy"}),
		units: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remedy",
			Name:      "units_total",
			Help:      "Units processed by final status.",
		}, []string{"status"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Iteration(unit string) {
	if m == nil {
		return
	}
	m.iterations.WithLabelValues(unit).Inc()
}

func (m *Metrics) Selected(id string) {
	if m == nil {
		return
	}
	m.selected.WithLabelValues(id).Inc()
}

// Strategy records one strategy attempt in Prometheus and OpenTelemetry.
func (m *Metrics) Strategy(ctx context.Context, strategy, outcome string, d time.Duration) {
	recordStrategyInstruments(ctx, strategy, outcome, d)
	if m == nil {
		return
	}
	m.strategy.WithLabelValues(strategy, outcome).Inc()
	m.strategyTime.WithLabelValues(strategy).Observe(d.Seconds())
}

func (m *Metrics) Fixed(id, strategy string, instances int) {
	if m == nil || instances <= 0 {
		return
	}
	m.applied.WithLabelValues(id, strategy).Add(float64(instances))
}

// Committed records a snapshot commit.
func (m *Metrics) Committed(ctx context.Context) {
	recordCommitInstruments(ctx)
}

func (m *Metrics) Unit(status string) {
	if m == nil {
		return
	}
	m.units.WithLabelValues(status).Inc()
}

// WriteTextfile writes all collectors in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
