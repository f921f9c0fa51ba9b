// Package report renders analysis results as LaTeX table rows or plain
// text.
package report

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNegativeFraction is returned when formatting a negative value.
var ErrNegativeFraction = errors.New("fraction must be non-negative")

// FormatFraction renders a non-negative rational in LaTeX: integers as
// plain digits, other values as an optional integer part followed by
// \frac{n}{d}, for example "2\frac{1}{2}".
func FormatFraction(f *big.Rat) (string, error) {
	if f.Sign() < 0 {
		return "", fmt.Errorf("%w: %s", ErrNegativeFraction, f.RatString())
	}
	if f.IsInt() {
		return f.Num().String(), nil
	}

	whole, rem := new(big.Int).QuoRem(f.Num(), f.Denom(), new(big.Int))
	if whole.Sign() == 0 {
		return fmt.Sprintf(`\frac{%s}{%s}`, rem, f.Denom()), nil
	}
	return fmt.Sprintf(`%s\frac{%s}{%s}`, whole, rem, f.Denom()), nil
}

// FormatPlain renders a rational as an integer or as "n/d".
func FormatPlain(f *big.Rat) string {
	return f.RatString()
}
