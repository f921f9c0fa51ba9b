package bounds

import (
	"math/big"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/medalbound/internal/domain"
)

var sampleStats = domain.CumulativeStats{10, 10, 9, 7, 4, 2, 0}

func TestFindBracket(t *testing.T) {
	tests := []struct {
		name      string
		ideal     *big.Rat
		stats     domain.CumulativeStats
		wantBelow int
		wantAbove int
		wantErr   error
	}{
		{
			name:      "fractional ideal between counts",
			ideal:     big.NewRat(5, 1),
			stats:     sampleStats,
			wantBelow: 4,
			wantAbove: 7,
		},
		{
			name:      "exactly achievable ideal",
			ideal:     big.NewRat(7, 1),
			stats:     sampleStats,
			wantBelow: 7,
			wantAbove: 7,
		},
		{
			name:      "non-integer ideal",
			ideal:     big.NewRat(2, 3),
			stats:     sampleStats,
			wantBelow: 0,
			wantAbove: 2,
		},
		{
			name:      "zero ideal",
			ideal:     new(big.Rat),
			stats:     sampleStats,
			wantBelow: 0,
			wantAbove: 0,
		},
		{
			name:      "ideal equal to contestant total",
			ideal:     big.NewRat(10, 1),
			stats:     sampleStats,
			wantBelow: 10,
			wantAbove: 10,
		},
		{
			name:      "no count below ideal",
			ideal:     big.NewRat(1, 2),
			stats:     domain.CumulativeStats{5, 3, 1},
			wantBelow: 0,
			wantAbove: 1,
		},
		{
			name:    "ideal exceeds every count",
			ideal:   big.NewRat(21, 2),
			stats:   sampleStats,
			wantErr: domain.ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			below, above, err := FindBracket(tt.ideal, tt.stats)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBelow, below, "below mismatch")
			assert.Equal(t, tt.wantAbove, above, "above mismatch")
		})
	}
}

// randomStats builds a non-increasing sequence ending in zero.
func randomStats(rng *rand.Rand) domain.CumulativeStats {
	dist := make(domain.ScoreDistribution, 1+rng.Intn(12))
	for i := range dist {
		dist[i] = rng.Intn(5)
	}
	return append(dist.Cumulative(), 0)
}

// TestFindBracket_Properties checks that the bracket ends are achievable,
// surround the ideal, and are the tightest such counts.
func TestFindBracket_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		stats := randomStats(rng)
		den := int64(1 + rng.Intn(12))
		num := rng.Int63n(int64(stats.Total())*den + 1)
		ideal := big.NewRat(num, den)

		below, above, err := FindBracket(ideal, stats)
		require.NoError(t, err, "stats=%v ideal=%s", stats, ideal.RatString())

		assert.True(t, stats.Contains(below), "below %d not achievable in %v", below, stats)
		assert.True(t, stats.Contains(above), "above %d not achievable in %v", above, stats)
		assert.LessOrEqual(t, ratInt(below).Cmp(ideal), 0)
		assert.GreaterOrEqual(t, ratInt(above).Cmp(ideal), 0)

		values := stats.Achievable()
		require.True(t, sort.IntsAreSorted(values))
		for _, v := range values {
			c := ratInt(v).Cmp(ideal)
			if c <= 0 {
				assert.LessOrEqual(t, v, below, "below is not maximal for %v ideal %s", stats, ideal.RatString())
			}
			if c >= 0 {
				assert.GreaterOrEqual(t, v, above, "above is not minimal for %v ideal %s", stats, ideal.RatString())
			}
		}
	}
}

func FuzzFindBracket(f *testing.F) {
	f.Add(int64(1), int64(5), int64(1))
	f.Add(int64(7), int64(2), int64(3))
	f.Add(int64(99), int64(0), int64(1))

	f.Fuzz(func(t *testing.T, seed, num, den int64) {
		if den <= 0 || num < 0 {
			t.Skip()
		}
		stats := randomStats(rand.New(rand.NewSource(seed)))
		ideal := big.NewRat(num, den)

		below, above, err := FindBracket(ideal, stats)
		if ideal.Cmp(ratInt(stats.Total())) > 0 {
			if err == nil {
				t.Fatalf("expected out of range for ideal %s, stats %v", ideal.RatString(), stats)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if below > above {
			t.Fatalf("below %d exceeds above %d", below, above)
		}
		if ratInt(below).Cmp(ideal) > 0 || ratInt(above).Cmp(ideal) < 0 {
			t.Fatalf("bracket (%d, %d) does not surround %s", below, above, ideal.RatString())
		}
	})
}
