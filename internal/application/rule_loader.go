package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

// Standard goals used when a configuration omits one.
var standardGoals = map[string]domain.Goal{
	"imo":  {1, 2, 3, 6},
	"egmo": {1, 2, 3, 6},
}

// Rule is a compiled boundary rule: a pipeline of units applied in order.
type Rule struct {
	ID          string
	Description string
	Pipeline    *Pipeline
}

// Analysis is a compiled AnalysisConfig.
// WARNING: Analyses returned by RuleLoader are cached and shared. Callers
// MUST NOT mutate them.
type Analysis struct {
	Config *AnalysisConfig
	Goal   domain.Goal
	Rules  []*Rule
}

// UnitDecorator wraps every unit built by a RuleLoader, for example to add
// instrumentation.
type UnitDecorator func(ruleID string, unit ports.Unit) ports.Unit

// RuleLoader provides YAML configuration parsing, validation, and caching
// for analyses, turning declarative rule definitions into executable
// pipelines.
type RuleLoader struct {
	// validator performs struct field validation with the custom goal,
	// semver and identifier rules.
	validator *validator.Validate
	// unitRegistry creates units from their type and parameters.
	unitRegistry ports.UnitRegistry
	// decorate, if set, wraps every unit after creation.
	decorate UnitDecorator
	// cache stores compiled analyses indexed by SHA256 hash of the
	// normalized configuration.
	cache   map[string]*Analysis
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines request
	// the same configuration simultaneously.
	sf singleflight.Group
}

// RuleLoaderOption configures a RuleLoader.
type RuleLoaderOption func(*RuleLoader)

// WithUnitDecorator wraps every created unit with d.
func WithUnitDecorator(d UnitDecorator) RuleLoaderOption {
	return func(rl *RuleLoader) { rl.decorate = d }
}

// NewRuleLoader creates a new rule loader with validation capabilities
// and an empty cache.
// NewRuleLoader returns an error if validator registration fails.
func NewRuleLoader(unitRegistry ports.UnitRegistry, opts ...RuleLoaderOption) (*RuleLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	rl := &RuleLoader{
		validator:    v,
		unitRegistry: unitRegistry,
		cache:        make(map[string]*Analysis),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl, nil
}

// load is the common implementation for loading analyses from byte data.
func (rl *RuleLoader) load(ctx context.Context, data []byte) (*Analysis, error) {
	config, err := rl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized config, not the raw bytes.
	hash, err := rl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := rl.sf.Do(hash, func() (any, error) {
		if analysis, ok := rl.getCachedAnalysis(hash); ok {
			return analysis, nil
		}

		if err := rl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		analysis, err := rl.buildAnalysis(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to build rules: %w", err)
		}

		rl.cacheAnalysis(hash, analysis)
		return analysis, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Analysis), nil
}

// LoadFromFile loads and compiles an analysis from a YAML file.
func (rl *RuleLoader) LoadFromFile(ctx context.Context, path string) (*Analysis, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return rl.load(ctx, data)
}

// LoadFromReader loads and compiles an analysis from an io.Reader.
func (rl *RuleLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Analysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return rl.load(ctx, data)
}

// parseYAML decodes strictly, so that misspelled fields are rejected rather
// than silently ignored.
func (rl *RuleLoader) parseYAML(data []byte) (*AnalysisConfig, error) {
	var config AnalysisConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig runs struct validation followed by semantic validation.
func (rl *RuleLoader) validateConfig(config *AnalysisConfig) error {
	if err := rl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := rl.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	return nil
}

// validateSemantics checks what struct tags cannot: unique rule and unit
// IDs, unit parameters, and that tier splitting is preceded by a unit that
// resolves the total number of medals.
func (rl *RuleLoader) validateSemantics(config *AnalysisConfig) error {
	ruleIDs := make(map[string]struct{})
	for _, rule := range config.Rules {
		if _, exists := ruleIDs[rule.ID]; exists {
			return fmt.Errorf("duplicate rule ID %q", rule.ID)
		}
		ruleIDs[rule.ID] = struct{}{}

		unitIDs := make(map[string]struct{})
		totalResolved := false
		for _, unit := range rule.Units {
			if _, exists := unitIDs[unit.ID]; exists {
				return fmt.Errorf("rule %s: duplicate unit ID %q", rule.ID, unit.ID)
			}
			unitIDs[unit.ID] = struct{}{}

			if err := ValidateUnitParameters(unit.Type, unit.Parameters); err != nil {
				return fmt.Errorf("rule %s: unit %s parameter validation failed: %w", rule.ID, unit.ID, err)
			}

			switch {
			case strings.HasPrefix(unit.Type, "margin_"):
				totalResolved = true
			case unit.Type == "tier_independent" || unit.Type == "tier_sequential":
				if !totalResolved {
					return fmt.Errorf("rule %s: unit %s (%s) needs a preceding margin unit", rule.ID, unit.ID, unit.Type)
				}
			}
		}
	}

	if config.Competition.Goal == nil {
		if _, ok := standardGoals[config.Competition.Name]; !ok {
			return fmt.Errorf("competition %s has no standard goal; set competition.goal", config.Competition.Name)
		}
	}

	seen := make(map[int]struct{})
	for _, ev := range config.Competition.Events {
		if _, dup := seen[ev]; dup {
			return fmt.Errorf("duplicate event %d", ev)
		}
		seen[ev] = struct{}{}
	}

	return nil
}

// buildAnalysis creates every rule's units through the unit registry and
// arranges them in pipelines.
func (rl *RuleLoader) buildAnalysis(ctx context.Context, config *AnalysisConfig) (*Analysis, error) {
	goal := domain.Goal(config.Competition.Goal)
	if goal == nil {
		goal = standardGoals[config.Competition.Name]
	}

	analysis := &Analysis{Config: config, Goal: goal}
	for _, ruleConfig := range config.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pipeline := NewPipeline(ruleConfig.ID)
		for _, unitConfig := range ruleConfig.Units {
			unit, err := rl.createUnit(unitConfig)
			if err != nil {
				return nil, fmt.Errorf("rule %s: failed to create unit %s: %w", ruleConfig.ID, unitConfig.ID, err)
			}
			if err := unit.Validate(); err != nil {
				return nil, fmt.Errorf("rule %s: unit %s is invalid: %w", ruleConfig.ID, unitConfig.ID, err)
			}
			if rl.decorate != nil {
				unit = rl.decorate(ruleConfig.ID, unit)
			}
			if err := pipeline.Add(NewUnitAdapter(unit, unitConfig.ID)); err != nil {
				return nil, fmt.Errorf("rule %s: %w", ruleConfig.ID, err)
			}
		}

		analysis.Rules = append(analysis.Rules, &Rule{
			ID:          ruleConfig.ID,
			Description: ruleConfig.Description,
			Pipeline:    pipeline,
		})
	}
	return analysis, nil
}

// createUnit decodes a unit's parameters and delegates to the registry.
func (rl *RuleLoader) createUnit(config UnitConfig) (ports.Unit, error) {
	var params map[string]any
	if err := config.Parameters.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}

	unit, err := rl.unitRegistry.CreateUnit(config.Type, config.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	return unit, nil
}

// calculateConfigHash computes the SHA256 hash of a normalized
// AnalysisConfig so that configurations differing only in formatting share
// a cache entry.
func (rl *RuleLoader) calculateConfigHash(config *AnalysisConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (rl *RuleLoader) getCachedAnalysis(hash string) (*Analysis, bool) {
	rl.cacheMu.RLock()
	defer rl.cacheMu.RUnlock()

	analysis, ok := rl.cache[hash]
	return analysis, ok
}

func (rl *RuleLoader) cacheAnalysis(hash string, analysis *Analysis) {
	rl.cacheMu.Lock()
	defer rl.cacheMu.Unlock()

	rl.cache[hash] = analysis
}

// ClearCache removes all cached analyses, forcing subsequent loads to
// recompile from source.
func (rl *RuleLoader) ClearCache() {
	rl.cacheMu.Lock()
	defer rl.cacheMu.Unlock()

	rl.cache = make(map[string]*Analysis)
}

// registerCustomValidators registers the semver, goal and identifier
// validators.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := RegisterAnalysisValidators(v); err != nil {
		return fmt.Errorf("failed to register analysis validators: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3
}
