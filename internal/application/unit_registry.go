package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/medalbound/infrastructure/units"
	"github.com/ahrav/medalbound/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.UnitRegistry = (*DefaultUnitRegistry)(nil)

// DefaultUnitRegistry implements the UnitRegistry interface providing
// a factory for creating rule units based on type and configuration.
// It supports dynamic registration of additional unit factories.
type DefaultUnitRegistry struct {
	// factories maps unit type strings to their factory functions.
	factories map[string]ports.UnitFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultUnitRegistry creates a new unit registry with the margin and
// tier unit types pre-registered.
func NewDefaultUnitRegistry() *DefaultUnitRegistry {
	registry := &DefaultUnitRegistry{
		factories: make(map[string]ports.UnitFactory),
	}
	registry.registerBuiltinFactories()
	return registry
}

// registerBuiltinFactories registers the standard unit types.
func (r *DefaultUnitRegistry) registerBuiltinFactories() {
	r.factories["margin_linear"] = units.CreateMarginLinearUnit
	r.factories["margin_quadratic"] = units.CreateMarginQuadraticUnit
	r.factories["tier_independent"] = units.CreateTierIndependentUnit
	r.factories["tier_sequential"] = units.CreateTierSequentialUnit
	r.factories["tier_lp"] = units.CreateTierLpUnit
	r.factories["tier_ratio"] = units.CreateTierRatioUnit
}

// CreateUnit creates a new unit instance based on the provided type,
// identifier, and configuration.
func (r *DefaultUnitRegistry) CreateUnit(
	unitType string,
	id string,
	config map[string]any,
) (ports.Unit, error) {
	r.mu.RLock()
	factory, exists := r.factories[unitType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported unit type: %s", unitType)
	}

	if id == "" {
		return nil, fmt.Errorf("unit ID cannot be empty")
	}

	if config == nil {
		config = make(map[string]any)
	}

	unit, err := factory(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit %s of type %s: %w", id, unitType, err)
	}

	return unit, nil
}

// RegisterUnitFactory registers a new factory function for a specific unit type.
// This allows extending the registry with custom unit types at runtime.
func (r *DefaultUnitRegistry) RegisterUnitFactory(
	unitType string,
	factory ports.UnitFactory,
) error {
	if unitType == "" {
		return fmt.Errorf("unit type cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[unitType] = factory
	return nil
}

// GetSupportedTypes returns the sorted list of registered unit types.
func (r *DefaultUnitRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for unitType := range r.factories {
		types = append(types, unitType)
	}
	slices.Sort(types)

	return types
}
