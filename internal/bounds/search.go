package bounds

import (
	"fmt"

	"github.com/ahrav/medalbound/internal/domain"
)

var _ domain.Algorithm = (*ScoreSearch)(nil)

// ScoreSearch determines tier boundaries by exhaustively minimizing a Metric
// over every achievable boundary vector.
//
// The searched positions are the unresolved tier positions, plus the total
// number of medals when that is unresolved too. Outer positions are chosen
// first, and each candidate count is bounded above by the boundary of the
// next outer position, so cumulative counts never decrease outward. Among
// equally scored vectors the one giving more contestants the outermost
// searched tier or better wins, then the next tier inward, and so on.
type ScoreSearch struct {
	metric Metric
}

// NewScoreSearch creates a ScoreSearch minimizing metric.
func NewScoreSearch(metric Metric) *ScoreSearch {
	return &ScoreSearch{metric: metric}
}

// Name returns the algorithm identifier.
func (s *ScoreSearch) Name() string { return "tier_" + s.metric.Name() }

// Metric returns the metric being minimized.
func (s *ScoreSearch) Metric() Metric { return s.metric }

// ComputeBoundaries implements domain.Algorithm.
func (s *ScoreSearch) ComputeBoundaries(
	stats domain.CumulativeStats,
	goal domain.Goal,
	known domain.Boundaries,
) (domain.Boundaries, error) {
	if err := checkInputs(s.Name(), stats, goal, known); err != nil {
		return nil, err
	}

	ret := resultFrom(stats, known)
	var positions []int
	for i := len(ret) - 2; i >= 0; i-- {
		if !ret.Known(i) {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return ret, nil
	}

	best, _, err := s.search(stats.Achievable(), goal, ret, positions)
	if err != nil {
		return nil, err
	}
	return best, nil
}

// search resolves positions[0] and, recursively, the remaining positions,
// which are ordered from outermost to innermost. candidates holds the
// achievable counts in ascending order.
func (s *ScoreSearch) search(
	candidates []int,
	goal domain.Goal,
	bounds domain.Boundaries,
	positions []int,
) (domain.Boundaries, Score, error) {
	pos := positions[0]
	upper := bounds[pos+1]
	lower := fixedFloor(bounds, pos)

	var (
		bestBounds domain.Boundaries
		bestScore  Score
		found      bool
	)
	for _, c := range candidates {
		if c > upper {
			break
		}
		if c < lower {
			continue
		}

		candidate := bounds.Clone()
		candidate[pos] = c

		var (
			full  domain.Boundaries
			score Score
		)
		if len(positions) == 1 {
			full, score = candidate, s.metric.Score(goal, candidate)
		} else {
			var err error
			full, score, err = s.search(candidates, goal, candidate, positions[1:])
			if err != nil {
				return nil, Score{}, err
			}
		}

		// Later candidates have larger counts, so on equal scores they win.
		if !found || score.Cmp(bestScore) <= 0 {
			bestBounds, bestScore, found = full, score, true
		}
	}

	if !found {
		return nil, Score{}, domain.NewBoundaryError(s.Name(), pos,
			fmt.Errorf("%w: no achievable count in [%d, %d]", domain.ErrNoAdmissibleSolution, lower, upper))
	}
	return bestBounds, bestScore, nil
}

// fixedFloor returns the largest already-fixed boundary inside pos, or 0.
func fixedFloor(bounds domain.Boundaries, pos int) int {
	floor := 0
	for i := 0; i < pos; i++ {
		if bounds.Known(i) && bounds[i] > floor {
			floor = bounds[i]
		}
	}
	return floor
}
