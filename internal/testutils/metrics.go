package testutils

import (
	"maps"
	"sync"
	"time"

	"github.com/ahrav/medalbound/internal/ports"
)

var _ ports.MetricsCollector = (*RecordingMetrics)(nil)

// RecordedMetric is one call made on a RecordingMetrics.
type RecordedMetric struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// RecordingMetrics implements ports.MetricsCollector by remembering every
// call. It is safe for concurrent use.
type RecordingMetrics struct {
	mu         sync.Mutex
	latencies  []RecordedMetric
	counters   []RecordedMetric
	gauges     []RecordedMetric
	histograms []RecordedMetric
}

func record(mu *sync.Mutex, dst *[]RecordedMetric, name string, v float64, labels map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	*dst = append(*dst, RecordedMetric{Name: name, Value: v, Labels: maps.Clone(labels)})
}

func snapshot(mu *sync.Mutex, src []RecordedMetric) []RecordedMetric {
	mu.Lock()
	defer mu.Unlock()
	return append([]RecordedMetric(nil), src...)
}

// RecordLatency implements ports.MetricsCollector. Value holds seconds.
func (m *RecordingMetrics) RecordLatency(op string, d time.Duration, labels map[string]string) {
	record(&m.mu, &m.latencies, op, d.Seconds(), labels)
}

// RecordCounter implements ports.MetricsCollector.
func (m *RecordingMetrics) RecordCounter(name string, v float64, labels map[string]string) {
	record(&m.mu, &m.counters, name, v, labels)
}

// RecordGauge implements ports.MetricsCollector.
func (m *RecordingMetrics) RecordGauge(name string, v float64, labels map[string]string) {
	record(&m.mu, &m.gauges, name, v, labels)
}

// RecordHistogram implements ports.MetricsCollector.
func (m *RecordingMetrics) RecordHistogram(name string, v float64, labels map[string]string) {
	record(&m.mu, &m.histograms, name, v, labels)
}

// Latencies returns the recorded latencies in call order.
func (m *RecordingMetrics) Latencies() []RecordedMetric { return snapshot(&m.mu, m.latencies) }

// Counters returns the recorded counter increments in call order.
func (m *RecordingMetrics) Counters() []RecordedMetric { return snapshot(&m.mu, m.counters) }

// Gauges returns the recorded gauge values in call order.
func (m *RecordingMetrics) Gauges() []RecordedMetric { return snapshot(&m.mu, m.gauges) }

// Histograms returns the recorded histogram observations in call order.
func (m *RecordingMetrics) Histograms() []RecordedMetric { return snapshot(&m.mu, m.histograms) }

// Names returns the metric names of recs.
func Names(recs []RecordedMetric) []string {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names
}
