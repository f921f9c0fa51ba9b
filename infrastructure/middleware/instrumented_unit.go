package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/medalbound/internal/application"
	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/ports"
)

const tracerName = "github.com/ahrav/medalbound/infrastructure/middleware"

var _ ports.Unit = (*InstrumentedUnit)(nil)

// InstrumentedUnit wraps a unit with an OpenTelemetry span and metrics for
// every execution. It reads the rule, competition and event from state and
// never modifies state itself.
type InstrumentedUnit struct {
	next    ports.Unit
	ruleID  string
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// InstrumentOption configures an InstrumentedUnit.
type InstrumentOption func(*InstrumentedUnit)

// WithTracer sets the tracer used for spans. The global tracer provider is
// used by default.
func WithTracer(t trace.Tracer) InstrumentOption {
	return func(u *InstrumentedUnit) { u.tracer = t }
}

// NewInstrumentedUnit wraps next. metrics may be nil.
func NewInstrumentedUnit(
	next ports.Unit,
	ruleID string,
	metrics ports.MetricsCollector,
	opts ...InstrumentOption,
) *InstrumentedUnit {
	if next == nil {
		panic("instrumented unit: next unit is required")
	}
	u := &InstrumentedUnit{
		next:    next,
		ruleID:  ruleID,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Decorator returns a unit decorator for RuleLoader that instruments every
// unit it builds.
func Decorator(metrics ports.MetricsCollector, opts ...InstrumentOption) application.UnitDecorator {
	return func(ruleID string, unit ports.Unit) ports.Unit {
		return NewInstrumentedUnit(unit, ruleID, metrics, opts...)
	}
}

// Name returns the wrapped unit's name.
func (u *InstrumentedUnit) Name() string { return u.next.Name() }

// Validate validates the wrapped unit.
func (u *InstrumentedUnit) Validate() error { return u.next.Validate() }

// Unwrap returns the wrapped unit.
func (u *InstrumentedUnit) Unwrap() ports.Unit { return u.next }

// Execute runs the wrapped unit inside a span.
func (u *InstrumentedUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	attrs := []attribute.KeyValue{
		attribute.String("unit.name", u.next.Name()),
		attribute.String("rule.id", u.ruleID),
	}
	if c, ok := domain.Get(state, domain.KeyCompetition); ok {
		attrs = append(attrs, attribute.String("competition", c))
	}
	if ev, ok := domain.Get(state, domain.KeyEventID); ok {
		attrs = append(attrs, attribute.Int("event.id", ev))
	}

	ctx, span := u.tracer.Start(ctx, "Unit.Execute", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	out, err := u.next.Execute(ctx, state)
	elapsed := time.Since(start)

	labels := map[string]string{"unit": u.next.Name(), "rule": u.ruleID}
	if u.metrics != nil {
		u.metrics.RecordLatency("unit_execute", elapsed, labels)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		u.count("error", labels)
		return out, err
	}

	if b, ok := domain.Get(out, domain.KeyBoundaries); ok {
		span.AddEvent("boundaries.resolved", trace.WithAttributes(
			attribute.IntSlice("boundaries", b),
		))
		if u.metrics != nil && len(b) >= 2 {
			u.metrics.RecordGauge("total_awarded", float64(b[len(b)-2]), labels)
		}
	}
	span.SetStatus(codes.Ok, "")
	u.count("success", labels)
	return out, nil
}

func (u *InstrumentedUnit) count(status string, labels map[string]string) {
	if u.metrics == nil {
		return
	}
	l := map[string]string{"unit": labels["unit"], "rule": labels["rule"], "status": status}
	u.metrics.RecordCounter("unit_executions_total", 1, l)
}
