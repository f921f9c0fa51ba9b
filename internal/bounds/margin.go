package bounds

import (
	"math/big"

	"github.com/ahrav/medalbound/internal/domain"
)

var (
	_ domain.Algorithm = (*MarginAlgorithm)(nil)
)

// ChoiceFunc decides whether to go above the ideal number of medals given
// how far below (marginBelow) and above (marginAbove) the ideal the two
// achievable alternatives are.
type ChoiceFunc func(marginBelow, marginAbove *big.Rat) bool

// MarginAlgorithm determines the total number of medals by choosing between
// the achievable counts immediately below and above the ideal number.
// It resolves only the total-awarded position of the boundary vector.
type MarginAlgorithm struct {
	name   string
	choose ChoiceFunc
}

// NewMarginAlgorithm creates a MarginAlgorithm from an arbitrary choice
// function.
func NewMarginAlgorithm(name string, choose ChoiceFunc) *MarginAlgorithm {
	return &MarginAlgorithm{name: name, choose: choose}
}

// NewMarginLinear goes above the ideal if b ≥ (num/den)·a, where a is the
// margin above and b the margin below (b > (num/den)·a when strict).
func NewMarginLinear(num, den int64, strict bool) *MarginAlgorithm {
	n, d := big.NewRat(num, 1), big.NewRat(den, 1)
	return NewMarginAlgorithm("margin_linear", func(marginBelow, marginAbove *big.Rat) bool {
		lhs := new(big.Rat).Mul(d, marginBelow)
		rhs := new(big.Rat).Mul(n, marginAbove)
		return preferAbove(lhs.Cmp(rhs), strict)
	})
}

// NewMarginQuadratic goes above the ideal if b ≥ (num/den)·a², where a is the
// margin above and b the margin below (b > (num/den)·a² when strict).
func NewMarginQuadratic(num, den int64, strict bool) *MarginAlgorithm {
	n, d := big.NewRat(num, 1), big.NewRat(den, 1)
	return NewMarginAlgorithm("margin_quadratic", func(marginBelow, marginAbove *big.Rat) bool {
		lhs := new(big.Rat).Mul(d, marginBelow)
		rhs := new(big.Rat).Mul(n, powRat(marginAbove, 2))
		return preferAbove(lhs.Cmp(rhs), strict)
	})
}

func preferAbove(cmp int, strict bool) bool {
	return cmp > 0 || (cmp == 0 && !strict)
}

// Name returns the algorithm identifier.
func (m *MarginAlgorithm) Name() string { return m.name }

// IdealTotal returns the ideal number of medals for the statistics and goal.
func IdealTotal(stats domain.CumulativeStats, goal domain.Goal) *big.Rat {
	return scale(stats.Total(), ratFrac(goal.AwardSum(), goal.Sum()))
}

// ComputeBoundaries implements domain.Algorithm by resolving the total
// number of medals. Every other position is copied from known.
func (m *MarginAlgorithm) ComputeBoundaries(
	stats domain.CumulativeStats,
	goal domain.Goal,
	known domain.Boundaries,
) (domain.Boundaries, error) {
	if err := checkInputs(m.name, stats, goal, known); err != nil {
		return nil, err
	}

	pos := len(goal) - 2
	ideal := IdealTotal(stats, goal)
	below, above, err := FindBracket(ideal, stats)
	if err != nil {
		return nil, domain.NewBoundaryError(m.name, pos, err)
	}

	ret := resultFrom(stats, known)
	marginBelow, marginAbove := margins(ideal, below, above)
	if m.choose(marginBelow, marginAbove) {
		ret[pos] = above
	} else {
		ret[pos] = below
	}
	return ret, nil
}
