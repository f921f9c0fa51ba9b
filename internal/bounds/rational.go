// Package bounds implements the medal boundary algorithms: finding the
// achievable counts that bracket an ideal number of medals, choosing the
// total number of medals from the bracket margins, and partitioning the
// medals between tiers.
//
// Every comparison is made with exact rationals (math/big.Rat). Many real
// distributions produce exact ties between candidates, and floating point
// error would resolve those ties arbitrarily.
package bounds

import (
	"fmt"
	"math/big"

	"github.com/ahrav/medalbound/internal/domain"
)

// ratInt returns n as a rational.
func ratInt(n int) *big.Rat { return new(big.Rat).SetInt64(int64(n)) }

// ratFrac returns num/den as a reduced rational. den must be non-zero.
func ratFrac(num, den int) *big.Rat { return big.NewRat(int64(num), int64(den)) }

// scale returns n × f.
func scale(n int, f *big.Rat) *big.Rat { return new(big.Rat).Mul(ratInt(n), f) }

// absDiff returns |a − b|.
func absDiff(a, b *big.Rat) *big.Rat {
	d := new(big.Rat).Sub(a, b)
	return d.Abs(d)
}

// powRat returns x^p for p ≥ 1.
func powRat(x *big.Rat, p int) *big.Rat {
	out := new(big.Rat).Set(x)
	for i := 1; i < p; i++ {
		out.Mul(out, x)
	}
	return out
}

// margins returns ideal − below and above − ideal.
func margins(ideal *big.Rat, below, above int) (*big.Rat, *big.Rat) {
	marginBelow := new(big.Rat).Sub(ideal, ratInt(below))
	marginAbove := new(big.Rat).Sub(ratInt(above), ideal)
	return marginBelow, marginAbove
}

// checkInputs applies the validation shared by every algorithm.
func checkInputs(name string, stats domain.CumulativeStats, goal domain.Goal, known domain.Boundaries) error {
	if len(known) != len(goal) {
		return domain.NewBoundaryError(name, -1,
			fmt.Errorf("%w: goal has %d entries, known boundaries have %d", domain.ErrShapeMismatch, len(goal), len(known)))
	}
	if err := goal.Validate(); err != nil {
		return domain.NewBoundaryError(name, -1, err)
	}
	if err := stats.Validate(); err != nil {
		return domain.NewBoundaryError(name, -1, err)
	}
	return nil
}

// resultFrom returns a copy of known with the contestant total fixed.
func resultFrom(stats domain.CumulativeStats, known domain.Boundaries) domain.Boundaries {
	ret := known.Clone()
	ret[len(ret)-1] = stats.Total()
	return ret
}
