package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric gathers reg and returns the series of name whose labels
// include want.
func findMetric(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			got := make(map[string]string)
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue metrics
				}
			}
			return m
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, want)
	return nil
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	labels := map[string]string{"rule": "linear", "competition": "imo", "outcome": "match"}
	pm.RecordCounter("evaluations_total", 1, labels)
	pm.RecordCounter("evaluations_total", 2, labels)
	m := findMetric(t, reg, "medalbound_rule_evaluations_total", labels)
	assert.Equal(t, 3.0, m.GetCounter().GetValue())

	pm.RecordCounter("unit_executions_total", 1, map[string]string{"unit": "tiers", "status": "error"})
	m = findMetric(t, reg, "medalbound_operations_total",
		map[string]string{"operation": "unit_execute", "status": "error", "unit": "tiers"})
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	pm.RecordCounter("downloads", 1, nil)
	m = findMetric(t, reg, "medalbound_operations_total",
		map[string]string{"operation": "downloads", "status": "success", "unit": "unknown"})
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}

func TestPrometheusMetrics_RecordLatency(t *testing.T) {
	tests := []struct {
		name     string
		labels   map[string]string
		wantUnit string
	}{
		{name: "unit label", labels: map[string]string{"unit": "total"}, wantUnit: "total"},
		{name: "rule fallback", labels: map[string]string{"rule": "lp1"}, wantUnit: "lp1"},
		{name: "empty unit label", labels: map[string]string{"unit": ""}, wantUnit: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			pm := NewPrometheusMetrics(reg)

			pm.RecordLatency("unit_execute", 250*time.Millisecond, tt.labels)
			m := findMetric(t, reg, "medalbound_execution_duration_seconds",
				map[string]string{"operation": "unit_execute", "unit": tt.wantUnit})
			assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
			assert.InDelta(t, 0.25, m.GetHistogram().GetSampleSum(), 1e-9)
		})
	}
}

func TestPrometheusMetrics_RecordHistogramAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMetrics(reg)

	labels := map[string]string{"rule": "ratio", "competition": "egmo"}
	pm.RecordHistogram("total_deviation", -2, labels)
	pm.RecordHistogram("total_deviation", 3, labels)
	m := findMetric(t, reg, "medalbound_total_deviation", labels)
	assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, m.GetHistogram().GetSampleSum())

	pm.RecordGauge("total_awarded", 117, map[string]string{"unit": "total"})
	m = findMetric(t, reg, "medalbound_state", map[string]string{"metric": "total_awarded", "unit": "total"})
	assert.Equal(t, 117.0, m.GetGauge().GetValue())
}

func TestNewPrometheusMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)
	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}
