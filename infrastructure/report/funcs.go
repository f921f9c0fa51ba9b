package report

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"text/template"

	"github.com/ahrav/medalbound/internal/domain"
)

// FuncMap returns the template functions used by the report templates.
// The functions never fail: invalid input renders as "?".
func FuncMap() template.FuncMap {
	return template.FuncMap{
		// add performs integer addition.
		// Template usage: {{add $i 1}}
		"add": func(a, b int) int {
			return a + b
		},

		// join concatenates elements with sep between them.
		// Template usage: {{join .Tags ", "}}
		"join": func(elems []string, sep string) string {
			return strings.Join(elems, sep)
		},

		// pad right-pads s with spaces to width runes.
		// Template usage: {{pad .RuleID 12}}
		"pad": func(s string, width int) string {
			if n := width - len([]rune(s)); n > 0 {
				return s + strings.Repeat(" ", n)
			}
			return s
		},

		// frac renders a non-negative rational in LaTeX.
		// Template usage: ${{frac .Ideal}}$
		"frac": func(f *big.Rat) string {
			s, err := FormatFraction(f)
			if err != nil {
				return "?"
			}
			return s
		},

		// bounds renders boundaries with unknown positions as "?", joined by
		// sep.
		// Template usage: {{bounds .Computed "/"}}
		"bounds": func(b domain.Boundaries, sep string) string {
			if b == nil {
				return "?"
			}
			parts := make([]string, len(b))
			for i, v := range b {
				if v == domain.Unknown {
					parts[i] = "?"
				} else {
					parts[i] = strconv.Itoa(v)
				}
			}
			return strings.Join(parts, sep)
		},

		// fixed formats a float with the given number of decimals.
		// Template usage: {{fixed .Mean 2}}
		"fixed": func(f float64, decimals int) string {
			return strconv.FormatFloat(f, 'f', decimals, 64)
		},

		// signed formats an integer with an explicit sign.
		// Template usage: {{signed .Deviation}}
		"signed": func(n int) string {
			return fmt.Sprintf("%+d", n)
		},
	}
}
