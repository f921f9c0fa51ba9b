package bounds

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/medalbound/internal/domain"
)

func TestScoreSearch_ComputeBoundaries(t *testing.T) {
	u := domain.Unknown
	tests := []struct {
		name   string
		metric Metric
		stats  domain.CumulativeStats
		goal   domain.Goal
		known  domain.Boundaries
		want   domain.Boundaries
	}{
		{
			name:   "l1 after margin choice",
			metric: Lp{P: 1},
			stats:  sampleStats,
			goal:   imoGoal,
			known:  domain.Boundaries{u, u, 4, 10},
			want:   domain.Boundaries{0, 2, 4, 10},
		},
		{
			name:   "squared l2 after margin choice",
			metric: Lp{P: 2},
			stats:  sampleStats,
			goal:   imoGoal,
			known:  domain.Boundaries{u, u, 4, 10},
			want:   domain.Boundaries{0, 2, 4, 10},
		},
		{
			name:   "scaled l1 after margin choice",
			metric: Lp{P: 1, Scaled: true},
			stats:  sampleStats,
			goal:   imoGoal,
			known:  domain.Boundaries{u, u, 4, 10},
			want:   domain.Boundaries{0, 2, 4, 10},
		},
		{
			name:   "ratio finds the proportional split",
			metric: RatioSum{},
			stats:  domain.CumulativeStats{12, 9, 6, 3, 1, 0},
			goal:   imoGoal,
			known:  domain.Boundaries{u, u, 6, 12},
			want:   domain.Boundaries{1, 3, 6, 12},
		},
		{
			name:   "ratio with every candidate degenerate is most generous",
			metric: RatioSum{},
			stats:  sampleStats,
			goal:   imoGoal,
			known:  domain.Boundaries{u, u, 4, 10},
			want:   domain.Boundaries{4, 4, 4, 10},
		},
		{
			name:   "equal scores prefer the larger count",
			metric: Lp{P: 1},
			stats:  domain.CumulativeStats{8, 6, 4, 2, 0},
			goal:   domain.Goal{1, 1, 2},
			known:  domain.Boundaries{u, 6, 8},
			want:   domain.Boundaries{4, 6, 8},
		},
		{
			name:   "unresolved total is searched outermost first",
			metric: Lp{P: 1},
			stats:  domain.CumulativeStats{8, 6, 4, 2, 0},
			goal:   domain.Goal{1, 1, 2},
			known:  domain.Boundaries{u, u, 8},
			want:   domain.Boundaries{4, 8, 8},
		},
		{
			name:   "known inner position bounds the search below",
			metric: Lp{P: 1},
			stats:  domain.CumulativeStats{8, 6, 4, 2, 0},
			goal:   domain.Goal{1, 1, 2},
			known:  domain.Boundaries{6, u, 8},
			want:   domain.Boundaries{6, 8, 8},
		},
		{
			name:   "fully resolved input is returned unchanged",
			metric: Lp{P: 1},
			stats:  sampleStats,
			goal:   imoGoal,
			known:  domain.Boundaries{2, 2, 4, 10},
			want:   domain.Boundaries{2, 2, 4, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewScoreSearch(tt.metric).ComputeBoundaries(tt.stats, tt.goal, tt.known)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ComputeBoundaries() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScoreSearch_NoAdmissibleSolution(t *testing.T) {
	u := domain.Unknown
	search := NewScoreSearch(Lp{P: 1})

	_, err := search.ComputeBoundaries(domain.CumulativeStats{10, 9, 7}, imoGoal, domain.Boundaries{u, u, 4, 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAdmissibleSolution)

	var be *domain.BoundaryError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "tier_lp1", be.Algorithm)
	assert.Equal(t, 1, be.Position)
}

func TestScoreSearch_Name(t *testing.T) {
	assert.Equal(t, "tier_lp1", NewScoreSearch(Lp{P: 1}).Name())
	assert.Equal(t, "tier_lp2_scaled", NewScoreSearch(Lp{P: 2, Scaled: true}).Name())
	assert.Equal(t, "tier_ratio", NewScoreSearch(RatioSum{}).Name())
	assert.Equal(t, RatioSum{}, NewScoreSearch(RatioSum{}).Metric())
}

// TestScoreSearch_MatchesBruteForce compares the search against a direct
// enumeration of every admissible pair of tier boundaries.
func TestScoreSearch_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	metrics := []Metric{Lp{P: 1}, Lp{P: 2}, Lp{P: 1, Scaled: true}, RatioSum{}}

	for iter := 0; iter < 100; iter++ {
		stats := randomStats(rng)
		total, err := NewMarginLinear(1, 1, false).
			ComputeBoundaries(stats, imoGoal, unknownBounds(imoGoal, stats.Total()))
		require.NoError(t, err)

		for _, metric := range metrics {
			got, err := NewScoreSearch(metric).ComputeBoundaries(stats, imoGoal, total)
			require.NoError(t, err)
			gotScore := metric.Score(imoGoal, got)

			values := stats.Achievable()
			for _, b1 := range values {
				if b1 > total[2] {
					break
				}
				for _, b0 := range values {
					if b0 > b1 {
						break
					}
					candidate := domain.Boundaries{b0, b1, total[2], total[3]}
					assert.LessOrEqual(t, gotScore.Cmp(metric.Score(imoGoal, candidate)), 0,
						"%s: %v scores %s, better than chosen %v at %s",
						metric.Name(), candidate, metric.Score(imoGoal, candidate), got, gotScore)
				}
			}
		}
	}
}
