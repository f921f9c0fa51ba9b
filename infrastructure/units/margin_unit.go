package units

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/medalbound/internal/bounds"
	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

var _ ports.Unit = (*MarginUnit)(nil)

// MarginComparison selects how the margins below and above the ideal number
// of medals are compared.
type MarginComparison string

// Supported margin comparisons.
const (
	// MarginLinear goes above the ideal if b ≥ (num/den)·a.
	MarginLinear MarginComparison = "linear"

	// MarginQuadratic goes above the ideal if b ≥ (num/den)·a².
	MarginQuadratic MarginComparison = "quadratic"
)

// MarginUnit resolves the total number of medals by choosing between the
// achievable counts immediately below and above the ideal. a is the margin
// above the ideal and b the margin below it.
//
// State requirements:
//   - domain.KeyStats and domain.KeyGoal
//   - domain.KeyBoundaries (optional; all unknown when absent)
//
// Execute writes domain.KeyBoundaries with the total position set.
type MarginUnit struct {
	name   string
	config MarginConfig
	alg    *bounds.MarginAlgorithm
}

// MarginConfig holds the coefficient num/den and the tie behaviour.
type MarginConfig struct {
	// Comparison is linear or quadratic. It is set by the unit type.
	Comparison MarginComparison `yaml:"comparison" json:"comparison" validate:"required,oneof=linear quadratic"`

	// Num and Den form the non-negative rational coefficient.
	Num int64 `yaml:"num" json:"num" validate:"min=0"`
	Den int64 `yaml:"den" json:"den" validate:"min=1"`

	// Strict requires a strict inequality to go above the ideal, so that
	// equality chooses the count below.
	Strict bool `yaml:"strict" json:"strict"`
}

// NewMarginUnit creates a MarginUnit with a validated configuration.
func NewMarginUnit(name string, config MarginConfig) (*MarginUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &MarginUnit{name: name, config: config, alg: marginAlgorithm(config)}, nil
}

func marginAlgorithm(c MarginConfig) *bounds.MarginAlgorithm {
	if c.Comparison == MarginQuadratic {
		return bounds.NewMarginQuadratic(c.Num, c.Den, c.Strict)
	}
	return bounds.NewMarginLinear(c.Num, c.Den, c.Strict)
}

// Name returns the unique identifier for this unit instance.
func (u *MarginUnit) Name() string { return u.name }

// Config returns the unit's configuration.
func (u *MarginUnit) Config() MarginConfig { return u.config }

// Algorithm returns the algorithm the unit applies.
func (u *MarginUnit) Algorithm() domain.Algorithm { return u.alg }

// Execute implements ports.Unit.
func (u *MarginUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	return applyAlgorithm(ctx, state, u.alg)
}

// Validate verifies the unit is properly configured.
func (u *MarginUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters decodes YAML parameters into the unit's configuration.
// The comparison is kept when the parameters do not name one. The unit is
// unchanged on error.
func (u *MarginUnit) UnmarshalParameters(params yaml.Node) error {
	config := MarginConfig{Comparison: u.config.Comparison}
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	u.config = config
	u.alg = marginAlgorithm(config)
	return nil
}

// DefaultMarginConfig returns the linear 1:1 non-strict comparison, which
// awards the achievable total closest to the ideal and goes above on a tie.
func DefaultMarginConfig() MarginConfig {
	return MarginConfig{Comparison: MarginLinear, Num: 1, Den: 1}
}

// CreateMarginLinearUnit creates a linear MarginUnit from a configuration map.
// This is the boundary adapter for YAML/JSON configuration.
func CreateMarginLinearUnit(id string, config map[string]any) (ports.Unit, error) {
	return createMarginUnit(id, config, MarginLinear)
}

// CreateMarginQuadraticUnit creates a quadratic MarginUnit from a
// configuration map.
func CreateMarginQuadraticUnit(id string, config map[string]any) (ports.Unit, error) {
	return createMarginUnit(id, config, MarginQuadratic)
}

func createMarginUnit(id string, config map[string]any, cmp MarginComparison) (ports.Unit, error) {
	cfg := DefaultMarginConfig()
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	cfg.Comparison = cmp
	return NewMarginUnit(id, cfg)
}
