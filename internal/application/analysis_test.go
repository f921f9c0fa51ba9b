package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
	"github.com/ahrav/medalbound/internal/testutils"
)

// fixedRule returns a rule whose single unit writes bounds.
func fixedRule(id string, bounds domain.Boundaries, err error) *Rule {
	p := NewPipeline(id)
	_ = p.Add(&mockExecutable{
		id: "fixed",
		executeFunc: func(_ context.Context, s domain.State) (domain.State, error) {
			if err != nil {
				return s, err
			}
			return domain.With(s, domain.KeyBoundaries, bounds), nil
		},
	})
	return &Rule{ID: id, Pipeline: p}
}

func TestAnalyzer_Evaluate(t *testing.T) {
	goal := domain.Goal{1, 2, 3, 6}
	stamp := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		rule        *Rule
		medals      []int
		wantOutcome string
		wantMatch   bool
		wantErr     bool
	}{
		{
			name:        "match",
			rule:        fixedRule("r", domain.Boundaries{0, 2, 4, 10}, nil),
			medals:      []int{0, 2, 2},
			wantOutcome: "match",
			wantMatch:   true,
		},
		{
			name:        "mismatch",
			rule:        fixedRule("r", domain.Boundaries{2, 4, 7, 10}, nil),
			medals:      []int{0, 2, 2},
			wantOutcome: "mismatch",
		},
		{
			name:        "no recorded medals",
			rule:        fixedRule("r", domain.Boundaries{0, 2, 4, 10}, nil),
			wantOutcome: "unknown",
		},
		{
			name:        "rule failure",
			rule:        fixedRule("r", nil, domain.ErrNoAdmissibleSolution),
			medals:      []int{0, 2, 2},
			wantOutcome: "error",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &testutils.RecordingMetrics{}
			a := NewAnalyzer(testutils.NewMockResultsSource("imo"), WithMetrics(metrics), WithClock(func() time.Time { return stamp }))

			eval, err := a.Evaluate(context.Background(), tt.rule, testutils.SampleInstance(2019, tt.medals), goal)
			counters := metrics.Counters()
			require.Len(t, counters, 1)
			assert.Equal(t, "evaluations_total", counters[0].Name)
			assert.Equal(t, tt.wantOutcome, counters[0].Labels["outcome"])
			assert.Equal(t, "r", counters[0].Labels["rule"])
			assert.Equal(t, []string{"rule_evaluate"}, testutils.Names(metrics.Latencies()))

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrNoAdmissibleSolution)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "r", eval.RuleID)
			assert.Equal(t, 2019, eval.EventID)
			assert.Equal(t, stamp, eval.Timestamp)
			assert.Equal(t, tt.wantMatch, eval.Matches())
			if tt.medals != nil {
				histograms := metrics.Histograms()
				require.Len(t, histograms, 1)
				assert.Equal(t, "total_deviation", histograms[0].Name)
			}
		})
	}
}

func TestAnalyzer_Run(t *testing.T) {
	loader := newTestLoader(t)
	analysis, err := loader.LoadFromReader(context.Background(), strings.NewReader(validConfig))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	source := testutils.NewMockResultsSource("imo", testutils.SampleInstance(2019, []int{0, 2, 2}))
	a := NewAnalyzer(source, WithLogger(zap.New(core)), WithConcurrency(2))

	evals, err := a.Run(context.Background(), analysis)

	require.Error(t, err, "the missing 2018 results are reported")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Contains(t, err.Error(), "event 2018")

	require.Len(t, evals, 2)
	assert.Equal(t, "linear_1_1", evals[0].RuleID)
	assert.Equal(t, "lp1", evals[1].RuleID)
	for _, e := range evals {
		assert.Equal(t, 2019, e.EventID)
		assert.Len(t, e.Computed, 4)
		assert.Equal(t, 10, e.Computed[3])
	}
	assert.Equal(t, domain.Boundaries{0, 2, 4, 10}, evals[0].Computed)
	assert.True(t, evals[0].Matches())

	assert.Equal(t, 1, source.Calls(2019), "each event is loaded once for all rules")
	assert.Equal(t, 1, logs.FilterMessage("failed to load event").Len())
	assert.Equal(t, 2, logs.FilterMessage("rule evaluated").Len())
	done := logs.FilterMessage("analysis complete").All()
	require.Len(t, done, 1)
	assert.Equal(t, int64(2), done[0].ContextMap()["evaluations"])
	assert.Equal(t, int64(1), done[0].ContextMap()["failures"])
}

func TestAnalyzer_RunOrdersEvents(t *testing.T) {
	analysis := &Analysis{
		Config: &AnalysisConfig{Competition: CompetitionConfig{Name: "imo", Events: []int{2021, 2019, 2020}}},
		Goal:   domain.Goal{1, 2, 3, 6},
		Rules:  []*Rule{fixedRule("a", domain.Boundaries{0, 2, 4, 10}, nil), fixedRule("b", nil, errors.New("boom"))},
	}
	source := testutils.NewMockResultsSource("imo")
	for _, y := range []int{2019, 2020, 2021} {
		source.Add(testutils.SampleInstance(y, nil))
	}

	evals, err := NewAnalyzer(source).Run(context.Background(), analysis)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule b on event 2019: boom")

	var years []int
	for _, e := range evals {
		assert.Equal(t, "a", e.RuleID)
		years = append(years, e.EventID)
	}
	assert.Equal(t, []int{2019, 2020, 2021}, years)
}

func TestAnalyzer_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis := &Analysis{
		Config: &AnalysisConfig{Competition: CompetitionConfig{Name: "imo", Events: []int{2019}}},
		Goal:   domain.Goal{1, 2, 3, 6},
	}
	_, err := NewAnalyzer(testutils.NewMockResultsSource("imo")).Run(ctx, analysis)
	assert.ErrorIs(t, err, context.Canceled)
}
