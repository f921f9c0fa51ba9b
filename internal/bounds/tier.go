package bounds

import (
	"github.com/ahrav/medalbound/internal/domain"
)

var (
	_ domain.Algorithm = TierIndependent{}
	_ domain.Algorithm = TierSequential{}
)

// TierIndependent determines the boundary of each tier independently, making
// the number of contestants with that tier or better as close as possible to
// its ideal share of the total number of medals and erring on the side of
// generosity in the case of equality.
//
// The total number of medals must already be known. Tier positions that are
// already known are left unchanged.
type TierIndependent struct{}

// Name returns the algorithm identifier.
func (TierIndependent) Name() string { return "tier_independent" }

// ComputeBoundaries implements domain.Algorithm.
func (a TierIndependent) ComputeBoundaries(
	stats domain.CumulativeStats,
	goal domain.Goal,
	known domain.Boundaries,
) (domain.Boundaries, error) {
	if err := checkInputs(a.Name(), stats, goal, known); err != nil {
		return nil, err
	}
	totalPos := len(goal) - 2
	if !known.Known(totalPos) {
		return nil, domain.NewBoundaryError(a.Name(), totalPos, domain.ErrMissingBoundary)
	}

	ret := resultFrom(stats, known)
	numMedals := ret[totalPos]
	awardSum := goal.AwardSum()
	for i := 0; i < totalPos; i++ {
		if ret.Known(i) {
			continue
		}
		ideal := scale(numMedals, ratFrac(goal.PrefixSum(i+1), awardSum))
		n, err := closest(ideal, stats)
		if err != nil {
			return nil, domain.NewBoundaryError(a.Name(), i, err)
		}
		ret[i] = n
	}
	return ret, nil
}

// TierSequential determines tier boundaries starting with the second-lowest
// tier. Each tier is sized as a proportion of the contestants with the next
// lower tier or better, rather than of the total number of medals, with the
// same generous tie-break as TierIndependent.
type TierSequential struct{}

// Name returns the algorithm identifier.
func (TierSequential) Name() string { return "tier_sequential" }

// ComputeBoundaries implements domain.Algorithm.
func (a TierSequential) ComputeBoundaries(
	stats domain.CumulativeStats,
	goal domain.Goal,
	known domain.Boundaries,
) (domain.Boundaries, error) {
	if err := checkInputs(a.Name(), stats, goal, known); err != nil {
		return nil, err
	}
	totalPos := len(goal) - 2
	if !known.Known(totalPos) {
		return nil, domain.NewBoundaryError(a.Name(), totalPos, domain.ErrMissingBoundary)
	}

	ret := resultFrom(stats, known)
	for i := totalPos - 1; i >= 0; i-- {
		if ret.Known(i) {
			continue
		}
		frac := ratFrac(goal.PrefixSum(i+1), goal.PrefixSum(i+2))
		ideal := scale(ret[i+1], frac)
		n, err := closest(ideal, stats)
		if err != nil {
			return nil, domain.NewBoundaryError(a.Name(), i, err)
		}
		ret[i] = n
	}
	return ret, nil
}
