package application

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateUnitParameters validates the parameters for a specific unit type,
// ensuring only known fields are present and values meet domain constraints.
// An empty parameters node is valid for every type.
func ValidateUnitParameters(unitType string, params yaml.Node) error {
	var paramMap map[string]any
	if err := params.Decode(&paramMap); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	switch unitType {
	case "margin_linear", "margin_quadratic":
		return validateMarginParams(paramMap)
	case "tier_lp":
		return validateLpParams(paramMap)
	case "tier_independent", "tier_sequential", "tier_ratio":
		return validateNoParams(unitType, paramMap)
	default:
		return fmt.Errorf("unknown unit type: %s", unitType)
	}
}

// validateMarginParams checks num ≥ 0, den ≥ 1 and a boolean strict.
func validateMarginParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "num":
			n, ok := v.(int)
			if !ok {
				return fmt.Errorf("num must be an integer")
			}
			if n < 0 {
				return fmt.Errorf("num must be non-negative")
			}
		case "den":
			d, ok := v.(int)
			if !ok {
				return fmt.Errorf("den must be an integer")
			}
			if d < 1 {
				return fmt.Errorf("den must be at least 1")
			}
		case "strict":
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("strict must be a boolean")
			}
		default:
			return fmt.Errorf("unknown margin parameter: %s", k)
		}
	}
	return nil
}

// validateLpParams checks 1 ≤ p ≤ 16 and a boolean scaled.
func validateLpParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "p":
			p, ok := v.(int)
			if !ok {
				return fmt.Errorf("p must be an integer")
			}
			if p < 1 || p > 16 {
				return fmt.Errorf("p must be between 1 and 16")
			}
		case "scaled":
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("scaled must be a boolean")
			}
		default:
			return fmt.Errorf("unknown tier_lp parameter: %s", k)
		}
	}
	return nil
}

func validateNoParams(unitType string, params map[string]any) error {
	for k := range params {
		return fmt.Errorf("%s takes no parameters, got %s", unitType, k)
	}
	return nil
}

// RegisterAnalysisValidators registers the goal and identifier validators
// used in AnalysisConfig struct tags.
func RegisterAnalysisValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("goal", validateGoal); err != nil {
		return fmt.Errorf("failed to register goal validator: %w", err)
	}
	if err := v.RegisterValidation("identifier", validateIdentifier); err != nil {
		return fmt.Errorf("failed to register identifier validator: %w", err)
	}
	return nil
}

// validateGoal accepts an int slice with at least one tier plus the
// non-awarded weight, all positive.
func validateGoal(fl validator.FieldLevel) bool {
	goal, ok := fl.Field().Interface().([]int)
	if !ok || len(goal) < 2 {
		return false
	}
	for _, w := range goal {
		if w <= 0 {
			return false
		}
	}
	return true
}

func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierPattern.MatchString(fl.Field().String())
}
