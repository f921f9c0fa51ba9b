package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/medalbound/infrastructure/middleware"
	"github.com/ahrav/medalbound/infrastructure/report"
	"github.com/ahrav/medalbound/infrastructure/results"
	"github.com/ahrav/medalbound/internal/application"
)

type analyzeOptions struct {
	configPath  string
	format      string
	concurrency int
	metricsFile string
}

func newAnalyzeCmd(c *cli) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Evaluate the rules of an analysis file against past events",
		Long: `Loads the analysis configuration, downloads the results of every listed
event, applies every rule and prints a comparison table followed by a
per-rule summary.

Example:
  medalbound analyze --config rules.yaml --format latex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Analysis configuration file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatText), "Output format: text or latex")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Number of events loaded at once")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func (c *cli) runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	ctx := cmd.Context()
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := middleware.NewPrometheusMetrics(reg)

	loader, err := application.NewRuleLoader(
		application.NewDefaultUnitRegistry(),
		application.WithUnitDecorator(middleware.Decorator(metrics)),
	)
	if err != nil {
		return err
	}
	analysis, err := loader.LoadFromFile(ctx, opts.configPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.configPath, err)
	}

	source, err := results.NewSource(analysis.Config.Competition.Name, c.newFetcher(analysis.Config.Source))
	if err != nil {
		return err
	}

	c.logger.Info("starting analysis",
		zap.String("analysis", analysis.Config.Metadata.Name),
		zap.String("competition", source.Name()),
		zap.Ints("events", analysis.Config.Competition.Events),
		zap.Int("rules", len(analysis.Rules)))

	analyzer := application.NewAnalyzer(source,
		application.WithLogger(c.logger),
		application.WithMetrics(metrics),
		application.WithConcurrency(opts.concurrency),
	)
	evals, runErr := analyzer.Run(ctx, analysis)

	if err := report.WriteComparison(cmd.OutOrStdout(), format, evals); err != nil {
		return err
	}
	summaries, err := report.Summarize(evals)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	if err := report.WriteSummary(cmd.OutOrStdout(), format, summaries); err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return runErr
}
