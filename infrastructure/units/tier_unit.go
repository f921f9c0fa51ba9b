package units

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/medalbound/internal/bounds"
	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

var _ ports.Unit = (*TierUnit)(nil)

// TierMethod selects how the medals are split between tiers.
type TierMethod string

// Supported tier methods.
const (
	// TierIndependent sizes each tier from the total number of medals.
	TierIndependent TierMethod = "independent"

	// TierSequential sizes each tier from the next lower tier.
	TierSequential TierMethod = "sequential"

	// TierLp minimizes the L^p distance from the ideal tier sizes.
	TierLp TierMethod = "lp"

	// TierRatio minimizes the pairwise ratio sum.
	TierRatio TierMethod = "ratio"
)

// TierUnit resolves the boundaries of the award tiers once the total number
// of medals is known. Tier positions already present in the state are kept.
type TierUnit struct {
	name   string
	config TierConfig
	alg    domain.Algorithm
}

// TierConfig configures a TierUnit. P and Scaled apply to the lp method only.
type TierConfig struct {
	Method TierMethod `yaml:"method" json:"method" validate:"required,oneof=independent sequential lp ratio"`
	P      int        `yaml:"p" json:"p" validate:"min=1,max=16"`
	Scaled bool       `yaml:"scaled" json:"scaled"`
}

// NewTierUnit creates a TierUnit with a validated configuration.
func NewTierUnit(name string, config TierConfig) (*TierUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	alg, err := tierAlgorithm(config)
	if err != nil {
		return nil, err
	}
	return &TierUnit{name: name, config: config, alg: alg}, nil
}

func tierAlgorithm(c TierConfig) (domain.Algorithm, error) {
	switch c.Method {
	case TierIndependent:
		return bounds.TierIndependent{}, nil
	case TierSequential:
		return bounds.TierSequential{}, nil
	case TierLp:
		m, err := bounds.NewLp(c.P, c.Scaled)
		if err != nil {
			return nil, err
		}
		return bounds.NewScoreSearch(m), nil
	case TierRatio:
		return bounds.NewScoreSearch(bounds.RatioSum{}), nil
	default:
		return nil, fmt.Errorf("%w: unknown tier method %q", domain.ErrInvalidConfiguration, c.Method)
	}
}

// Name returns the unique identifier for this unit instance.
func (u *TierUnit) Name() string { return u.name }

// Config returns the unit's configuration.
func (u *TierUnit) Config() TierConfig { return u.config }

// Algorithm returns the algorithm the unit applies.
func (u *TierUnit) Algorithm() domain.Algorithm { return u.alg }

// Execute implements ports.Unit.
func (u *TierUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	return applyAlgorithm(ctx, state, u.alg)
}

// Validate verifies the unit is properly configured.
func (u *TierUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters decodes YAML parameters into the unit's configuration.
// The method is kept when the parameters do not name one.
func (u *TierUnit) UnmarshalParameters(params yaml.Node) error {
	config := TierConfig{Method: u.config.Method, P: 1}
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	alg, err := tierAlgorithm(config)
	if err != nil {
		return err
	}

	u.config = config
	u.alg = alg
	return nil
}

// DefaultTierConfig returns the independent method.
func DefaultTierConfig() TierConfig {
	return TierConfig{Method: TierIndependent, P: 1}
}

// CreateTierIndependentUnit creates an independent TierUnit.
func CreateTierIndependentUnit(id string, config map[string]any) (ports.Unit, error) {
	return createTierUnit(id, config, TierIndependent)
}

// CreateTierSequentialUnit creates a sequential TierUnit.
func CreateTierSequentialUnit(id string, config map[string]any) (ports.Unit, error) {
	return createTierUnit(id, config, TierSequential)
}

// CreateTierLpUnit creates an L^p search TierUnit. Parameters: p (default 1)
// and scaled (default false).
func CreateTierLpUnit(id string, config map[string]any) (ports.Unit, error) {
	return createTierUnit(id, config, TierLp)
}

// CreateTierRatioUnit creates a ratio-sum search TierUnit.
func CreateTierRatioUnit(id string, config map[string]any) (ports.Unit, error) {
	return createTierUnit(id, config, TierRatio)
}

func createTierUnit(id string, config map[string]any, method TierMethod) (ports.Unit, error) {
	cfg := DefaultTierConfig()
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	cfg.Method = method
	return NewTierUnit(id, cfg)
}
