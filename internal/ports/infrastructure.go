package ports

import (
	"context"
	"time"

	"github.com/ahrav/medalbound/internal/domain"
)

// ResultsSource loads the results of one event of a competition.
// Implementations download the published results, cache them and convert
// them into a domain.Instance.
type ResultsSource interface {
	// Name returns the competition name, such as "imo".
	Name() string

	// Load returns the instance for eventID. It returns an error wrapping
	// ErrNotFound if the event has no published results.
	Load(ctx context.Context, eventID int) (domain.Instance, error)
}

// ArtifactCache stores raw downloaded documents so that repeated analyses
// do not refetch them.
type ArtifactCache interface {
	// Get returns the cached document and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a document under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as the deviation
	// of a computed total from the jury's total.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
