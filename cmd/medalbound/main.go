// Command medalbound evaluates medal boundary rules against the boundaries
// juries actually chose at past olympiads.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ahrav/medalbound/infrastructure/results"
	"github.com/ahrav/medalbound/internal/application"
)

// cli holds global flags and shared state for all commands.
type cli struct {
	verbose  bool
	cacheDir string

	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "medalbound",
		Short: "Compare medal boundary rules with olympiad juries' decisions",
		Long: `medalbound computes medal boundaries for olympiad results using
configurable rules that aim for gold, silver and bronze medals in the ratio
1:2:3 with half the contestants receiving a medal, and compares them with the
boundaries juries actually chose.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&c.cacheDir, "cache-dir", "", "Directory for downloaded results (default \"cache\")")

	root.AddCommand(newAnalyzeCmd(c), newBracketCmd(c), newComputeCmd(c))
	return root
}

// newFetcher builds a results fetcher from the source configuration, with
// the --cache-dir flag taking precedence.
func (c *cli) newFetcher(src application.SourceConfig) *results.Fetcher {
	dir := c.cacheDir
	if dir == "" {
		dir = src.CacheDir
	}
	if dir == "" {
		dir = "cache"
	}
	rps := src.RequestsPerSecond
	if rps == 0 {
		rps = results.DefaultRequestsPerSecond
	}
	burst := src.Burst
	if burst == 0 {
		burst = results.DefaultBurst
	}

	return results.NewFetcher(results.NewFileCache(dir),
		results.WithRateLimit(rps, burst),
		results.WithHTTPClient(&http.Client{Timeout: src.Timeout(results.DefaultTimeout)}),
		results.WithFetchLogger(c.logger.Named("fetch")),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
