package bounds

import (
	"fmt"
	"math/big"

	"github.com/ahrav/medalbound/internal/domain"
)

// FindBracket returns the achievable cumulative counts around an ideal
// number of medals: below is the largest count not exceeding ideal and above
// the smallest count not less than ideal. They are equal when ideal is itself
// achievable. stats must be non-increasing.
//
// FindBracket fails with domain.ErrOutOfRange when ideal exceeds every count.
func FindBracket(ideal *big.Rat, stats domain.CumulativeStats) (below, above int, err error) {
	for i := len(stats) - 1; i >= 0; i-- {
		c := ratInt(stats[i]).Cmp(ideal)
		if c <= 0 {
			below = stats[i]
		}
		if c >= 0 {
			return below, stats[i], nil
		}
	}
	return 0, 0, fmt.Errorf("%w: ideal %s, contestants %d", domain.ErrOutOfRange, ideal.RatString(), stats.Total())
}

// closest resolves an ideal count to the nearer end of its bracket, erring on
// the side of generosity when both ends are equally far away.
func closest(ideal *big.Rat, stats domain.CumulativeStats) (int, error) {
	below, above, err := FindBracket(ideal, stats)
	if err != nil {
		return 0, err
	}
	marginBelow, marginAbove := margins(ideal, below, above)
	if marginBelow.Cmp(marginAbove) >= 0 {
		return above, nil
	}
	return below, nil
}
