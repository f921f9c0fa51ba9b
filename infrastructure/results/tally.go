package results

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ahrav/medalbound/internal/domain"
)

// awardScheme maps the award labels a competition publishes to medal tiers.
// Labels mapped to a negative tier receive no medal.
type awardScheme struct {
	source string
	labels map[string]int
	tiers  int
}

const noMedal = -1

// tally accumulates contestants' totals and awards for one event.
type tally struct {
	scheme   awardScheme
	event    int
	maxTotal int
	scores   domain.ScoreDistribution
	medals   []int
}

func newTally(scheme awardScheme, event, maxTotal int) *tally {
	return &tally{
		scheme:   scheme,
		event:    event,
		maxTotal: maxTotal,
		scores:   make(domain.ScoreDistribution, maxTotal+1),
		medals:   make([]int, scheme.tiers),
	}
}

// add records one contestant.
func (t *tally) add(total int, award string) error {
	if total < 0 || total > t.maxTotal {
		return fmt.Errorf("%w: %s %d: total %d outside [0, %d]",
			ErrMalformedResults, t.scheme.source, t.event, total, t.maxTotal)
	}
	tier, ok := t.scheme.labels[award]
	if !ok {
		return NewUnrecognizedAwardError(t.scheme.source, t.event, award, slices.Collect(maps.Keys(t.scheme.labels)))
	}
	t.scores[total]++
	if tier != noMedal {
		t.medals[tier]++
	}
	return nil
}

func (t *tally) instance() domain.Instance {
	return domain.NewInstance(t.scheme.source, t.event, t.scores, t.medals)
}
