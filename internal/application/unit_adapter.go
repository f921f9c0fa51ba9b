package application

import (
	"context"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

// UnitAdapter wraps a ports.Unit to implement ports.Executable so that units
// can be added to a rule's Pipeline.
type UnitAdapter struct {
	// unit performs the actual work when Execute is called.
	unit ports.Unit
	// id identifies the unit within its rule for error reporting.
	id string
}

// NewUnitAdapter creates a new adapter for unit with the given ID.
func NewUnitAdapter(unit ports.Unit, id string) *UnitAdapter {
	return &UnitAdapter{
		unit: unit,
		id:   id,
	}
}

// Execute delegates to the underlying unit's Execute method.
func (ua *UnitAdapter) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	return ua.unit.Execute(ctx, state)
}

// ID returns the unique string identifier for this adapter.
func (ua *UnitAdapter) ID() string { return ua.id }

// Unit returns the wrapped unit.
func (ua *UnitAdapter) Unit() ports.Unit { return ua.unit }
