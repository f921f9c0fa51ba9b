// Package middleware provides cross-cutting concerns for rule evaluation:
// Prometheus metrics and OpenTelemetry tracing around rule units.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/medalbound/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks how often each rule reproduces the jury's boundaries, how far
// its totals deviate, and how long units take to run.
type PrometheusMetrics struct {
	ruleEvaluations  *prometheus.CounterVec
	totalDeviation   *prometheus.HistogramVec
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its metrics with reg. A nil reg uses the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		ruleEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medalbound_rule_evaluations_total",
				Help: "Rule evaluations by outcome: match, mismatch, unknown or error.",
			},
			[]string{"rule", "competition", "outcome"},
		),
		totalDeviation: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medalbound_total_deviation",
				Help:    "Computed minus actual total number of medals.",
				Buckets: prometheus.LinearBuckets(-10, 1, 21),
			},
			[]string{"rule", "competition"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medalbound_execution_duration_seconds",
				Help:    "Execution time of rules and units.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "unit"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medalbound_operations_total",
				Help: "Total number of unit executions and other operations.",
			},
			[]string{"operation", "status", "unit"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "medalbound_state",
				Help: "Current values such as boundaries resolved by a unit.",
			},
			[]string{"metric", "unit"},
		),
	}
}

// unitLabel returns the unit label, falling back to the rule and then to
// "unknown".
func unitLabel(labels map[string]string) string {
	if u := labels["unit"]; u != "" {
		return u
	}
	if r := labels["rule"]; r != "" {
		return r
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, unitLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "evaluations_total":
		pm.ruleEvaluations.WithLabelValues(
			labels["rule"],
			labels["competition"],
			labels["outcome"],
		).Add(value)
	case "unit_executions_total":
		pm.operationCounter.WithLabelValues("unit_execute", labels["status"], unitLabel(labels)).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success", unitLabel(labels)).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, unitLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "total_deviation":
		pm.totalDeviation.WithLabelValues(labels["rule"], labels["competition"]).Observe(value)
	default:
		pm.executionLatency.WithLabelValues(metric, unitLabel(labels)).Observe(value)
	}
}
