package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/medalbound/internal/application"
	"github.com/ahrav/medalbound/internal/domain"
)

type computeOptions struct {
	stats  []int
	goal   []int
	margin string
	tiers  string
}

func newComputeCmd(c *cli) *cobra.Command {
	opts := &computeOptions{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Apply one rule to an ad hoc score distribution",
		Long: `Resolves the total number of medals with a margin rule, then splits it
between the tiers, and prints the cumulative boundaries followed by the
number of contestants.

Margin rules are linear:NUM:DEN or quadratic:NUM:DEN, with an optional
":strict" suffix. Tier rules are independent, sequential, ratio, or
lp:P with an optional ":scaled" suffix.

Example:
  medalbound compute --stats 10,10,9,7,4,2,0 --goal 1,2,3,6 --margin linear:1:1 --tiers lp:1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runCompute(cmd, opts)
		},
	}

	cmd.Flags().IntSliceVar(&opts.stats, "stats", nil, "Cumulative statistics: contestants scoring at least 0, 1, 2, ... (required)")
	cmd.Flags().IntSliceVar(&opts.goal, "goal", []int{1, 2, 3, 6}, "Tier weights, highest first, then the non-awarded weight")
	cmd.Flags().StringVar(&opts.margin, "margin", "linear:1:1", "Margin rule for the total number of medals")
	cmd.Flags().StringVar(&opts.tiers, "tiers", "independent", "Rule splitting the total between tiers")
	_ = cmd.MarkFlagRequired("stats")
	return cmd
}

func (c *cli) runCompute(cmd *cobra.Command, opts *computeOptions) error {
	stats := domain.CumulativeStats(opts.stats)
	if err := stats.Validate(); err != nil {
		return err
	}
	goal := domain.Goal(opts.goal)
	if err := goal.Validate(); err != nil {
		return err
	}

	marginType, marginParams, err := parseMarginSpec(opts.margin)
	if err != nil {
		return err
	}
	tierType, tierParams, err := parseTierSpec(opts.tiers)
	if err != nil {
		return err
	}

	registry := application.NewDefaultUnitRegistry()
	pipeline := application.NewPipeline("compute")
	for _, spec := range []struct {
		id, unitType string
		params       map[string]any
	}{
		{"total", marginType, marginParams},
		{"tiers", tierType, tierParams},
	} {
		unit, err := registry.CreateUnit(spec.unitType, spec.id, spec.params)
		if err != nil {
			return err
		}
		if err := pipeline.Add(application.NewUnitAdapter(unit, spec.id)); err != nil {
			return err
		}
	}

	state := domain.NewState().WithMultiple(map[string]any{
		domain.KeyStats.Name(): stats,
		domain.KeyGoal.Name():  goal,
	})
	out, err := pipeline.Execute(cmd.Context(), state)
	if err != nil {
		return err
	}
	bounds, err := domain.MustGet(out, domain.KeyBoundaries)
	if err != nil {
		return err
	}

	c.logger.Debug("computed boundaries",
		zap.String("margin", opts.margin),
		zap.String("tiers", opts.tiers),
		zap.Ints("boundaries", bounds))

	fmt.Fprintln(cmd.OutOrStdout(), bounds.String())
	return nil
}

// parseMarginSpec parses linear:NUM:DEN[:strict] or quadratic:NUM:DEN[:strict].
func parseMarginSpec(spec string) (string, map[string]any, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return "", nil, fmt.Errorf("invalid margin %q: want linear|quadratic:NUM:DEN[:strict]", spec)
	}
	var unitType string
	switch parts[0] {
	case "linear":
		unitType = "margin_linear"
	case "quadratic":
		unitType = "margin_quadratic"
	default:
		return "", nil, fmt.Errorf("invalid margin %q: unknown comparison %q", spec, parts[0])
	}
	num, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid margin %q: numerator: %w", spec, err)
	}
	den, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid margin %q: denominator: %w", spec, err)
	}
	params := map[string]any{"num": num, "den": den}
	if len(parts) == 4 {
		if parts[3] != "strict" {
			return "", nil, fmt.Errorf("invalid margin %q: unknown flag %q", spec, parts[3])
		}
		params["strict"] = true
	}
	return unitType, params, nil
}

// parseTierSpec parses independent, sequential, ratio or lp:P[:scaled].
func parseTierSpec(spec string) (string, map[string]any, error) {
	parts := strings.Split(spec, ":")
	switch parts[0] {
	case "independent", "sequential", "ratio":
		if len(parts) != 1 {
			return "", nil, fmt.Errorf("invalid tiers %q: %s takes no parameters", spec, parts[0])
		}
		return "tier_" + parts[0], nil, nil
	case "lp":
		if len(parts) < 2 || len(parts) > 3 {
			return "", nil, fmt.Errorf("invalid tiers %q: want lp:P[:scaled]", spec)
		}
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", nil, fmt.Errorf("invalid tiers %q: exponent: %w", spec, err)
		}
		params := map[string]any{"p": p}
		if len(parts) == 3 {
			if parts[2] != "scaled" {
				return "", nil, fmt.Errorf("invalid tiers %q: unknown flag %q", spec, parts[2])
			}
			params["scaled"] = true
		}
		return "tier_lp", params, nil
	default:
		return "", nil, fmt.Errorf("invalid tiers %q: unknown rule %q", spec, parts[0])
	}
}
