package application

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

const defaultConcurrency = 4

// Analyzer applies the rules of an Analysis to every configured event and
// compares the result with the medals actually awarded.
type Analyzer struct {
	source      ports.ResultsSource
	logger      *zap.Logger
	metrics     ports.MetricsCollector
	concurrency int
	now         func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the analyzer's logger.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// WithMetrics records evaluation outcomes on m.
func WithMetrics(m ports.MetricsCollector) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = m }
}

// WithConcurrency bounds the number of events loaded at once.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock sets the time source used for evaluation timestamps.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an Analyzer loading events from source.
func NewAnalyzer(source ports.ResultsSource, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		source:      source,
		logger:      zap.NewNop(),
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run evaluates every rule on every event of the analysis. Evaluations are
// ordered by event then by rule. Events that fail to load and rules that
// fail on an event are logged and skipped; their errors are joined into the
// returned error alongside the successful evaluations.
func (a *Analyzer) Run(ctx context.Context, analysis *Analysis) ([]domain.Evaluation, error) {
	events := analysis.Config.Competition.Events

	var (
		mu        sync.Mutex
		instances = make(map[int]domain.Instance, len(events))
		errs      []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, ev := range events {
		g.Go(func() error {
			in, err := a.source.Load(gctx, ev)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Warn("failed to load event",
					zap.String("competition", a.source.Name()),
					zap.Int("event", ev),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("event %d: %w", ev, err))
				return nil
			}
			instances[ev] = in
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordered := make([]int, 0, len(instances))
	for ev := range instances {
		ordered = append(ordered, ev)
	}
	sort.Ints(ordered)

	var evals []domain.Evaluation
	for _, ev := range ordered {
		in := instances[ev]
		for _, rule := range analysis.Rules {
			eval, err := a.Evaluate(ctx, rule, in, analysis.Goal)
			if err != nil {
				a.logger.Warn("rule failed",
					zap.String("rule", rule.ID),
					zap.Int("event", ev),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("rule %s on event %d: %w", rule.ID, ev, err))
				continue
			}
			evals = append(evals, eval)
		}
	}

	a.logger.Info("analysis complete",
		zap.String("analysis", analysis.Config.Metadata.Name),
		zap.Int("events", len(ordered)),
		zap.Int("evaluations", len(evals)),
		zap.Int("failures", len(errs)))

	return evals, errors.Join(errs...)
}

// Evaluate applies one rule to one instance.
func (a *Analyzer) Evaluate(
	ctx context.Context,
	rule *Rule,
	in domain.Instance,
	goal domain.Goal,
) (domain.Evaluation, error) {
	start := a.now()
	labels := map[string]string{"rule": rule.ID, "competition": in.Competition}

	state := domain.NewInstanceState(rule.ID, in, goal)
	out, err := rule.Pipeline.Execute(ctx, state)
	if a.metrics != nil {
		a.metrics.RecordLatency("rule_evaluate", a.now().Sub(start), labels)
	}
	if err != nil {
		a.record("error", labels)
		return domain.Evaluation{}, err
	}

	computed, err := domain.MustGet(out, domain.KeyBoundaries)
	if err != nil {
		a.record("error", labels)
		return domain.Evaluation{}, err
	}

	eval := domain.Evaluation{
		RuleID:      rule.ID,
		Competition: in.Competition,
		EventID:     in.EventID,
		Computed:    computed,
		Actual:      in.ActualBoundaries(),
		Timestamp:   a.now(),
	}

	switch {
	case eval.Actual == nil:
		a.record("unknown", labels)
	case eval.Matches():
		a.record("match", labels)
	default:
		a.record("mismatch", labels)
	}
	if dev, ok := eval.TotalDeviation(); ok && a.metrics != nil {
		a.metrics.RecordHistogram("total_deviation", float64(dev), labels)
	}

	a.logger.Debug("rule evaluated",
		zap.String("rule", rule.ID),
		zap.Int("event", in.EventID),
		zap.Stringer("computed", eval.Computed),
		zap.Bool("matches", eval.Matches()))

	return eval, nil
}

func (a *Analyzer) record(outcome string, labels map[string]string) {
	if a.metrics == nil {
		return
	}
	l := maps.Clone(labels)
	l["outcome"] = outcome
	a.metrics.RecordCounter("evaluations_total", 1, l)
}
