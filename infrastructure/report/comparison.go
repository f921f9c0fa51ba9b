package report

import (
	"fmt"
	"io"
	"text/template"

	"github.com/samber/lo"

	"github.com/ahrav/medalbound/internal/domain"
)

// Format selects how tables are rendered.
type Format string

// Supported formats.
const (
	FormatText  Format = "text"
	FormatLaTeX Format = "latex"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatLaTeX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text or latex)", s)
	}
}

// ComparisonRow is one line of the comparison table.
type ComparisonRow struct {
	Event     int
	RuleID    string
	Computed  domain.Boundaries
	Actual    domain.Boundaries
	Matches   bool
	Deviation int
	Known     bool
}

var comparisonTemplates = map[Format]*template.Template{
	FormatText: template.Must(template.New("comparison").Funcs(FuncMap()).Parse(
		`{{range .}}{{.Event}}  {{pad .RuleID 20}} {{pad (bounds .Computed "/") 20}} {{pad (bounds .Actual "/") 20}} ` +
			`{{if .Matches}}match{{else if .Known}}{{signed .Deviation}}{{else}}-{{end}}
{{end}}`)),
	FormatLaTeX: template.Must(template.New("comparison").Funcs(FuncMap()).Parse(
		`{{range .}}{{.Event}} & \texttt{ {{- .RuleID -}} } & ${{bounds .Computed ", "}}$ & ${{bounds .Actual ", "}}$ & ` +
			`{{if .Matches}}\checkmark{{else if .Known}}${{signed .Deviation}}${{end}} \\
{{end}}`)),
}

// ComparisonRows converts evaluations into table rows, preserving order.
func ComparisonRows(evals []domain.Evaluation) []ComparisonRow {
	return lo.Map(evals, func(e domain.Evaluation, _ int) ComparisonRow {
		dev, known := e.TotalDeviation()
		return ComparisonRow{
			Event:     e.EventID,
			RuleID:    e.RuleID,
			Computed:  e.Computed,
			Actual:    e.Actual,
			Matches:   e.Matches(),
			Deviation: dev,
			Known:     known,
		}
	})
}

// WriteComparison writes one row per evaluation comparing the computed
// boundaries with the jury's. Rows whose totals differ show the computed
// minus the actual number of medals.
func WriteComparison(w io.Writer, format Format, evals []domain.Evaluation) error {
	tmpl, ok := comparisonTemplates[format]
	if !ok {
		return fmt.Errorf("unknown report format %q", format)
	}
	return tmpl.Execute(w, ComparisonRows(evals))
}
