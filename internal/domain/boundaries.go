package domain

import (
	"fmt"
	"slices"
)

// Unknown marks a boundary position that has not been resolved yet.
const Unknown = -1

// ScoreDistribution maps each integer total score (the index) to the number
// of contestants who achieved exactly that score.
type ScoreDistribution []int

// Cumulative returns the cumulative statistics for the distribution, where
// element k is the number of contestants scoring k or more.
func (d ScoreDistribution) Cumulative() CumulativeStats {
	cum := make(CumulativeStats, len(d))
	total := 0
	for i := len(d) - 1; i >= 0; i-- {
		total += d[i]
		cum[i] = total
	}
	return cum
}

// CumulativeStats holds, for each score threshold k, the number of
// contestants with a score of at least k. It is non-increasing in k and its
// first element is the total number of contestants.
type CumulativeStats []int

// Validate checks that the statistics are non-empty, non-negative and
// non-increasing.
func (s CumulativeStats) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidStats)
	}
	for i, v := range s {
		if v < 0 {
			return fmt.Errorf("%w: negative count %d at score %d", ErrInvalidStats, v, i)
		}
		if i > 0 && v > s[i-1] {
			return fmt.Errorf("%w: count increases from %d to %d at score %d", ErrInvalidStats, s[i-1], v, i)
		}
	}
	return nil
}

// Total returns the number of contestants.
func (s CumulativeStats) Total() int {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

// Achievable returns the distinct cumulative counts in ascending order.
func (s CumulativeStats) Achievable() []int {
	out := make([]int, 0, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		if len(out) == 0 || out[len(out)-1] != s[i] {
			out = append(out, s[i])
		}
	}
	return out
}

// Contains reports whether n is an achievable cumulative count.
func (s CumulativeStats) Contains(n int) bool { return slices.Contains(s, n) }

// Goal holds the desired relative proportions of each award tier, highest
// first, followed by the weight of contestants receiving no award. The IMO
// goal is {1, 2, 3, 6}.
type Goal []int

// Validate checks that the goal has at least one tier and that every weight
// is positive.
func (g Goal) Validate() error {
	if len(g) < 2 {
		return fmt.Errorf("%w: need at least one tier and the non-awarded weight, got %d entries", ErrInvalidGoal, len(g))
	}
	for i, w := range g {
		if w <= 0 {
			return fmt.Errorf("%w: weight %d at position %d is not positive", ErrInvalidGoal, w, i)
		}
	}
	return nil
}

// Tiers returns the number of award tiers.
func (g Goal) Tiers() int { return len(g) - 1 }

// Sum returns the sum of all weights including the non-awarded weight.
func (g Goal) Sum() int { return g.PrefixSum(len(g)) }

// AwardSum returns the sum of the tier weights.
func (g Goal) AwardSum() int { return g.PrefixSum(len(g) - 1) }

// PrefixSum returns the sum of the first n weights.
func (g Goal) PrefixSum(n int) int {
	sum := 0
	for _, w := range g[:n] {
		sum += w
	}
	return sum
}

// Boundaries holds cumulative award counts: position i is the number of
// contestants receiving tier i or better, the second to last position is the
// total number awarded and the last position is the number of contestants.
// Unresolved positions hold Unknown.
type Boundaries []int

// NewBoundaries returns a boundary vector for the goal with every position
// unresolved except the fixed contestant total.
func NewBoundaries(goal Goal, numContestants int) Boundaries {
	b := make(Boundaries, len(goal))
	for i := range b {
		b[i] = Unknown
	}
	if len(b) > 0 {
		b[len(b)-1] = numContestants
	}
	return b
}

// Clone returns a copy of the boundaries.
func (b Boundaries) Clone() Boundaries { return slices.Clone(b) }

// Known reports whether position i has been resolved.
func (b Boundaries) Known(i int) bool { return b[i] != Unknown }

// Resolved reports whether every position has been resolved.
func (b Boundaries) Resolved() bool { return !slices.Contains(b, Unknown) }

// TierCounts converts the cumulative boundaries of the award tiers into the
// number of contestants receiving exactly each tier.
func (b Boundaries) TierCounts() []int {
	if len(b) < 2 {
		return nil
	}
	counts := make([]int, len(b)-1)
	for i := range counts {
		counts[i] = b[i]
		if i > 0 {
			counts[i] -= b[i-1]
		}
	}
	return counts
}

// String renders the boundaries with "?" for unresolved positions.
func (b Boundaries) String() string {
	parts := make([]string, len(b))
	for i, v := range b {
		if v == Unknown {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("%v", parts)
}
