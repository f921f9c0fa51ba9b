package bounds

import (
	"fmt"
	"math/big"

	"github.com/ahrav/medalbound/internal/domain"
)

// Score is the value a Metric assigns to a complete boundary vector. Lower
// is better. A degenerate score is worse than every non-degenerate score and
// equal to every other degenerate score.
type Score struct {
	degenerate bool
	value      *big.Rat
}

// NewScore returns a non-degenerate score with the given value.
func NewScore(v *big.Rat) Score { return Score{value: v} }

// DegenerateScore returns the worst possible score.
func DegenerateScore() Score { return Score{degenerate: true} }

// Degenerate reports whether s is the worst possible score.
func (s Score) Degenerate() bool { return s.degenerate }

// Value returns the score's value, or nil when degenerate.
func (s Score) Value() *big.Rat { return s.value }

// Cmp compares s and o and returns -1, 0 or +1.
func (s Score) Cmp(o Score) int {
	switch {
	case s.degenerate && o.degenerate:
		return 0
	case s.degenerate:
		return 1
	case o.degenerate:
		return -1
	}
	return s.value.Cmp(o.value)
}

// String renders the score exactly.
func (s Score) String() string {
	if s.degenerate {
		return "degenerate"
	}
	return s.value.RatString()
}

// Metric measures how far a complete boundary vector deviates from the goal.
// bounds ends with the total number of medals followed by the number of
// contestants, which metrics ignore.
type Metric interface {
	Score(goal domain.Goal, bounds domain.Boundaries) Score
	Name() string
}

var (
	_ Metric = Lp{}
	_ Metric = RatioSum{}
)

// Lp scores boundaries by the p-th power of the L^p distance between the
// actual and ideal number of medals of each tier. When Scaled is set, each
// tier's count is first scaled so that every ideal count equals the total
// number of medals.
type Lp struct {
	P      int
	Scaled bool
}

// NewLp returns an Lp metric. p must be at least 1.
func NewLp(p int, scaled bool) (Lp, error) {
	if p < 1 {
		return Lp{}, fmt.Errorf("%w: lp exponent must be at least 1, got %d", domain.ErrInvalidConfiguration, p)
	}
	return Lp{P: p, Scaled: scaled}, nil
}

// Name returns the metric identifier.
func (m Lp) Name() string {
	if m.Scaled {
		return fmt.Sprintf("lp%d_scaled", m.P)
	}
	return fmt.Sprintf("lp%d", m.P)
}

// Score implements Metric.
func (m Lp) Score(goal domain.Goal, bounds domain.Boundaries) Score {
	p := max(m.P, 1)
	tiers := goal.Tiers()
	goalTotal := goal.AwardSum()
	numMedals := bounds[tiers-1]
	counts := bounds.TierCounts()

	sum := new(big.Rat)
	for i := 0; i < tiers; i++ {
		actual := ratInt(counts[i])
		ideal := ratInt(numMedals)
		if m.Scaled {
			actual.Mul(actual, ratFrac(goalTotal, goal[i]))
		} else {
			ideal.Mul(ideal, ratFrac(goal[i], goalTotal))
		}
		sum.Add(sum, powRat(absDiff(actual, ideal), p))
	}
	return NewScore(sum)
}

// RatioSum scores boundaries by the sum, over each ordered pair of tiers, of
// the ratio of their counts divided by the ratio of their weights. With N
// tiers the minimum, N(N−1), is reached exactly when every count is
// proportional to its weight. Any empty tier gives a degenerate score.
type RatioSum struct{}

// Name returns the metric identifier.
func (RatioSum) Name() string { return "ratio" }

// Score implements Metric.
func (RatioSum) Score(goal domain.Goal, bounds domain.Boundaries) Score {
	tiers := goal.Tiers()
	counts := bounds.TierCounts()[:tiers]
	for _, n := range counts {
		if n == 0 {
			return DegenerateScore()
		}
	}

	sum := new(big.Rat)
	for i := 0; i < tiers; i++ {
		for j := 0; j < tiers; j++ {
			if i == j {
				continue
			}
			term := ratFrac(counts[i], counts[j])
			term.Quo(term, ratFrac(goal[i], goal[j]))
			sum.Add(sum, term)
		}
	}
	return NewScore(sum)
}
