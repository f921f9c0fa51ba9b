package report

import (
	"fmt"
	"io"
	"math"
	"text/template"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"github.com/ahrav/medalbound/internal/domain"
)

// RuleSummary aggregates a rule's evaluations across events.
type RuleSummary struct {
	RuleID string

	// Events is the number of evaluated events, Known those with recorded
	// medals and Matches those where the rule reproduced the jury exactly.
	Events  int
	Known   int
	Matches int

	// Absolute deviation of the computed total number of medals from the
	// actual total, over the known events. Zero when nothing is known.
	MeanAbsDeviation   float64
	MedianAbsDeviation float64
	MaxAbsDeviation    float64
}

// Summarize groups evaluations by rule, in order of first appearance.
func Summarize(evals []domain.Evaluation) ([]RuleSummary, error) {
	byRule := lo.GroupBy(evals, func(e domain.Evaluation) string { return e.RuleID })
	ruleIDs := lo.Uniq(lo.Map(evals, func(e domain.Evaluation, _ int) string { return e.RuleID }))

	out := make([]RuleSummary, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		group := byRule[id]
		s := RuleSummary{
			RuleID:  id,
			Events:  len(group),
			Matches: lo.CountBy(group, domain.Evaluation.Matches),
		}

		var devs stats.Float64Data
		for _, e := range group {
			if d, ok := e.TotalDeviation(); ok {
				devs = append(devs, math.Abs(float64(d)))
			}
		}
		s.Known = len(devs)
		if len(devs) > 0 {
			var err error
			if s.MeanAbsDeviation, err = devs.Mean(); err != nil {
				return nil, fmt.Errorf("rule %s: mean: %w", id, err)
			}
			if s.MedianAbsDeviation, err = devs.Median(); err != nil {
				return nil, fmt.Errorf("rule %s: median: %w", id, err)
			}
			if s.MaxAbsDeviation, err = devs.Max(); err != nil {
				return nil, fmt.Errorf("rule %s: max: %w", id, err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

var summaryTemplates = map[Format]*template.Template{
	FormatText: template.Must(template.New("summary").Funcs(FuncMap()).Parse(
		`{{range .}}{{pad .RuleID 20}} {{.Matches}}/{{.Known}} exact  ` +
			`mean {{fixed .MeanAbsDeviation 2}}  median {{fixed .MedianAbsDeviation 1}}  max {{fixed .MaxAbsDeviation 0}}
{{end}}`)),
	FormatLaTeX: template.Must(template.New("summary").Funcs(FuncMap()).Parse(
		`{{range .}}\texttt{ {{- .RuleID -}} } & {{.Matches}}/{{.Known}} & ` +
			`{{fixed .MeanAbsDeviation 2}} & {{fixed .MedianAbsDeviation 1}} & {{fixed .MaxAbsDeviation 0}} \\
{{end}}`)),
}

// WriteSummary writes one row per rule summary.
func WriteSummary(w io.Writer, format Format, summaries []RuleSummary) error {
	tmpl, ok := summaryTemplates[format]
	if !ok {
		return fmt.Errorf("unknown report format %q", format)
	}
	return tmpl.Execute(w, summaries)
}
