package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

var _ ports.ResultsSource = (*MockResultsSource)(nil)

// MockResultsSource implements ports.ResultsSource with in-memory instances.
// Events without an instance fail with ports.ErrNotFound unless a failure
// has been injected for them.
type MockResultsSource struct {
	name string

	mu        sync.Mutex
	instances map[int]domain.Instance
	failures  map[int]error
	calls     map[int]int
}

// NewMockResultsSource creates a source named name serving instances.
func NewMockResultsSource(name string, instances ...domain.Instance) *MockResultsSource {
	m := &MockResultsSource{
		name:      name,
		instances: make(map[int]domain.Instance),
		failures:  make(map[int]error),
		calls:     make(map[int]int),
	}
	for _, in := range instances {
		m.Add(in)
	}
	return m
}

// Add registers in under its event ID, replacing any earlier instance.
func (m *MockResultsSource) Add(in domain.Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[in.EventID] = in
}

// FailWith makes every Load of eventID return err.
func (m *MockResultsSource) FailWith(eventID int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[eventID] = err
}

// Calls returns how many times eventID has been loaded.
func (m *MockResultsSource) Calls(eventID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[eventID]
}

// Name implements ports.ResultsSource.
func (m *MockResultsSource) Name() string { return m.name }

// Load implements ports.ResultsSource.
func (m *MockResultsSource) Load(ctx context.Context, eventID int) (domain.Instance, error) {
	if err := ctx.Err(); err != nil {
		return domain.Instance{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[eventID]++
	if err, ok := m.failures[eventID]; ok {
		return domain.Instance{}, err
	}
	in, ok := m.instances[eventID]
	if !ok {
		return domain.Instance{}, fmt.Errorf("%s %d: %w", m.name, eventID, ports.ErrNotFound)
	}
	return in, nil
}
