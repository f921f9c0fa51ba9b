// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/medalbound/internal/domain"
)

// Unit represents one step of a boundary rule. Each Unit resolves some
// positions of the boundary vector held in the State, so that margin and
// tier steps can be combined freely.
// Units should be stateless and thread-safe for concurrent execution.
type Unit interface {
	// Name returns a unique identifier for this unit.
	// The name is used for logging, debugging, and configuration.
	Name() string

	// Execute reads the statistics, goal and known boundaries from state and
	// returns a new State with the boundaries it resolved.
	// The original State must not be modified.
	// Any errors during execution should be returned rather than panicking.
	//
	// The context parameter allows for cancellation and deadline propagation.
	//
	// Example:
	//
	//	newState, err := unit.Execute(ctx, state)
	//	if err != nil {
	//	    return domain.State{}, fmt.Errorf("unit %s failed: %w", unit.Name(), err)
	//	}
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the unit is properly configured and ready for execution.
	// It is typically called while a rule is being loaded.
	// Return nil if validation passes, or an error describing what is invalid.
	Validate() error
}

// UnitFactory creates a Unit with the given identifier from its decoded
// parameters.
type UnitFactory func(id string, config map[string]any) (Unit, error)

// UnitRegistry creates units by type name.
type UnitRegistry interface {
	// CreateUnit creates a unit of unitType configured by config.
	CreateUnit(unitType string, id string, config map[string]any) (Unit, error)

	// RegisterUnitFactory makes a new unit type available.
	RegisterUnitFactory(unitType string, factory UnitFactory) error

	// GetSupportedTypes returns every registered unit type.
	GetSupportedTypes() []string
}
