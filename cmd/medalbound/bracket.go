package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/medalbound/infrastructure/report"
	"github.com/ahrav/medalbound/infrastructure/results"
	"github.com/ahrav/medalbound/internal/application"
)

type bracketOptions struct {
	competition string
	from, to    int
}

func newBracketCmd(c *cli) *cobra.Command {
	opts := &bracketOptions{}
	cmd := &cobra.Command{
		Use:   "bracket",
		Short: "Print the bronze boundary choices of a range of events as LaTeX rows",
		Long: `For each event, prints half the number of contestants and how far the
achievable medal totals immediately below and above it are from that ideal.
The side the jury chose is set in bold.

Example:
  medalbound bracket --competition imo --from 1986 --to 2015`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runBracket(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.competition, "competition", "imo", "Competition: imo or egmo")
	cmd.Flags().IntVar(&opts.from, "from", 1986, "First event (year or EGMO number)")
	cmd.Flags().IntVar(&opts.to, "to", 2015, "Last event, inclusive")
	return cmd
}

func (c *cli) runBracket(cmd *cobra.Command, opts *bracketOptions) error {
	if opts.to < opts.from {
		return fmt.Errorf("--to %d is before --from %d", opts.to, opts.from)
	}
	source, err := results.NewSource(opts.competition, c.newFetcher(application.SourceConfig{}))
	if err != nil {
		return err
	}

	rows := make([]report.BronzeRow, 0, opts.to-opts.from+1)
	for ev := opts.from; ev <= opts.to; ev++ {
		in, err := source.Load(cmd.Context(), ev)
		if err != nil {
			return err
		}
		row, err := report.NewBronzeRow(in)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return report.WriteBronzeTable(cmd.OutOrStdout(), rows)
}
