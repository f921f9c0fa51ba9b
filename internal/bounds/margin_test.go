package bounds

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/medalbound/internal/domain"
)

var imoGoal = domain.Goal{1, 2, 3, 6}

func unknownBounds(goal domain.Goal, n int) domain.Boundaries {
	return domain.NewBoundaries(goal, n)
}

func TestIdealTotal(t *testing.T) {
	assert.Equal(t, 0, IdealTotal(sampleStats, imoGoal).Cmp(big.NewRat(5, 1)))
	assert.Equal(t, 0, IdealTotal(domain.CumulativeStats{7, 3, 0}, domain.Goal{1, 2}).Cmp(big.NewRat(7, 3)))
}

func TestMarginAlgorithm_ComputeBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		alg   *MarginAlgorithm
		stats domain.CumulativeStats
		known domain.Boundaries
		want  domain.Boundaries
	}{
		{
			name:  "linear one to one prefers the closer count below",
			alg:   NewMarginLinear(1, 1, false),
			stats: sampleStats,
			known: unknownBounds(imoGoal, 10),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 4, 10},
		},
		{
			name:  "linear equality goes above when not strict",
			alg:   NewMarginLinear(1, 2, false),
			stats: sampleStats,
			known: unknownBounds(imoGoal, 10),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 7, 10},
		},
		{
			name:  "linear equality stays below when strict",
			alg:   NewMarginLinear(1, 2, true),
			stats: sampleStats,
			known: unknownBounds(imoGoal, 10),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 4, 10},
		},
		{
			name:  "linear zero coefficient always goes above",
			alg:   NewMarginLinear(0, 1, true),
			stats: sampleStats,
			known: unknownBounds(imoGoal, 10),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 7, 10},
		},
		{
			name:  "quadratic compares against the squared margin above",
			alg:   NewMarginQuadratic(1, 1, false),
			stats: sampleStats,
			known: unknownBounds(imoGoal, 10),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 4, 10},
		},
		{
			name:  "quadratic equality goes above when not strict",
			alg:   NewMarginQuadratic(1, 4, false),
			stats: sampleStats,
			known: unknownBounds(imoGoal, 10),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 7, 10},
		},
		{
			name:  "achievable ideal is chosen exactly",
			alg:   NewMarginLinear(1, 1, true),
			stats: domain.CumulativeStats{36, 18, 11, 5, 2, 0},
			known: unknownBounds(imoGoal, 36),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 18, 36},
		},
		{
			name:  "known tier positions are copied through",
			alg:   NewMarginLinear(1, 1, false),
			stats: sampleStats,
			known: domain.Boundaries{0, 2, domain.Unknown, 10},
			want:  domain.Boundaries{0, 2, 4, 10},
		},
		{
			name:  "contestant total is taken from the statistics",
			alg:   NewMarginLinear(1, 1, false),
			stats: sampleStats,
			known: unknownBounds(imoGoal, domain.Unknown),
			want:  domain.Boundaries{domain.Unknown, domain.Unknown, 4, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.known.Clone()
			got, err := tt.alg.ComputeBoundaries(tt.stats, imoGoal, tt.known)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ComputeBoundaries() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, before, tt.known, "input boundaries must not be modified")
		})
	}
}

func TestMarginAlgorithm_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stats   domain.CumulativeStats
		goal    domain.Goal
		known   domain.Boundaries
		wantErr error
	}{
		{
			name:    "known length differs from goal",
			stats:   sampleStats,
			goal:    imoGoal,
			known:   domain.Boundaries{domain.Unknown, 10},
			wantErr: domain.ErrShapeMismatch,
		},
		{
			name:    "non-positive goal weight",
			stats:   sampleStats,
			goal:    domain.Goal{1, 0, 3, 6},
			known:   unknownBounds(imoGoal, 10),
			wantErr: domain.ErrInvalidGoal,
		},
		{
			name:    "increasing statistics",
			stats:   domain.CumulativeStats{3, 5, 0},
			goal:    imoGoal,
			known:   unknownBounds(imoGoal, 3),
			wantErr: domain.ErrInvalidStats,
		},
		{
			name:    "empty statistics",
			stats:   domain.CumulativeStats{},
			goal:    imoGoal,
			known:   unknownBounds(imoGoal, 0),
			wantErr: domain.ErrInvalidStats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMarginLinear(1, 1, false).ComputeBoundaries(tt.stats, tt.goal, tt.known)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var be *domain.BoundaryError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, "margin_linear", be.Algorithm)
		})
	}
}

// TestMarginLinear_Monotonic checks that raising the coefficient never
// increases the total number of medals.
func TestMarginLinear_Monotonic(t *testing.T) {
	statsSets := []domain.CumulativeStats{
		sampleStats,
		{36, 18, 11, 5, 2, 0},
		{100, 97, 90, 71, 66, 52, 49, 31, 12, 3, 0},
		{13, 13, 8, 8, 8, 1},
	}
	coefficients := [][2]int64{{0, 1}, {1, 4}, {1, 2}, {1, 1}, {3, 2}, {2, 1}, {5, 1}, {100, 1}}

	for _, stats := range statsSets {
		for _, strict := range []bool{false, true} {
			prev := stats.Total() + 1
			for _, c := range coefficients {
				got, err := NewMarginLinear(c[0], c[1], strict).
					ComputeBoundaries(stats, imoGoal, unknownBounds(imoGoal, stats.Total()))
				require.NoError(t, err)

				total := got[len(got)-2]
				assert.LessOrEqual(t, total, prev, "stats=%v coefficient=%d/%d strict=%v", stats, c[0], c[1], strict)
				assert.True(t, stats.Contains(total))
				prev = total
			}
		}
	}
}

func TestMarginAlgorithm_Name(t *testing.T) {
	assert.Equal(t, "margin_linear", NewMarginLinear(1, 1, false).Name())
	assert.Equal(t, "margin_quadratic", NewMarginQuadratic(1, 1, false).Name())

	custom := NewMarginAlgorithm("always_above", func(_, _ *big.Rat) bool { return true })
	got, err := custom.ComputeBoundaries(sampleStats, imoGoal, unknownBounds(imoGoal, 10))
	require.NoError(t, err)
	assert.Equal(t, 7, got[2])
	assert.Equal(t, "always_above", custom.Name())
}
