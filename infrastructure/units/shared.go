// Package units provides the boundary rule units that implement the
// ports.Unit interface: margin units that resolve the total number of medals
// and tier units that split it between the award tiers.
package units

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/medalbound/internal/domain"
)

// Common errors returned by units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrMissingInput is returned when the state lacks the statistics, goal or
	// boundaries a unit needs.
	ErrMissingInput = errors.New("required input missing from state")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// applyAlgorithm runs alg on the statistics, goal and boundaries held in
// state and returns a new state with the updated boundaries.
func applyAlgorithm(ctx context.Context, state domain.State, alg domain.Algorithm) (domain.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}

	stats, ok := domain.Get(state, domain.KeyStats)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrMissingInput, domain.KeyStats.Name())
	}
	goal, ok := domain.Get(state, domain.KeyGoal)
	if !ok {
		return state, fmt.Errorf("%w: %s", ErrMissingInput, domain.KeyGoal.Name())
	}
	known, ok := domain.Get(state, domain.KeyBoundaries)
	if !ok {
		known = domain.NewBoundaries(goal, stats.Total())
	}

	bounds, err := alg.ComputeBoundaries(stats, goal, known)
	if err != nil {
		return state, err
	}
	return domain.With(state, domain.KeyBoundaries, bounds), nil
}

// decodeConfig overlays config onto cfg, which holds the defaults.
func decodeConfig(config map[string]any, cfg any) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
