package pipego

import (
	"context"
	"time"

	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Switch operator.
const (
	// Metrics.
	SwitchEvaluationsTotal = metricz.Key("switch.evaluations.total")
	SwitchMatchedTotal     = metricz.Key("switch.matched.total")
	SwitchDefaultTotal     = metricz.Key("switch.default.total")
	SwitchUnmatchedTotal   = metricz.Key("switch.unmatched.total")

	// Spans.
	SwitchEvaluateSpan = tracez.Key("switch.evaluate")

	// Tags.
	SwitchTagCase    = tracez.Tag("switch.case")
	SwitchTagMatched = tracez.Tag("switch.matched")

	// Hook event keys.
	SwitchEventMatched   = hookz.Key("switch.matched")
	SwitchEventUnmatched = hookz.Key("switch.unmatched")
)

// SwitchEvent represents a routing decision. It is emitted via hookz when a
// Switch built with a Router evaluates its cases.
type SwitchEvent struct {
	Name      Name      // Switch operator name
	CaseName  Name      // Operator the value was routed to (if matched)
	Matched   bool      // Whether any case (or Otherwise) matched
	Default   bool      // Whether the Otherwise case was taken
	Timestamp time.Time // When the decision was made
}

// Case pairs a predicate with the operator to apply when it matches.
// Build cases with CaseWhen and Otherwise.
type Case[T any] struct {
	pred      func(T) bool
	op        Operator[T]
	isDefault bool
}

// CaseWhen builds a case that applies op when pred returns true.
func CaseWhen[T any](pred func(T) bool, op Operator[T]) Case[T] {
	return Case[T]{pred: pred, op: op}
}

// Otherwise builds the default case: it always matches. Place it last; cases
// are evaluated in order and the first match wins.
func Otherwise[T any](op Operator[T]) Case[T] {
	return Case[T]{pred: func(T) bool { return true }, op: op, isDefault: true}
}

// Switch creates an operator that routes the value to the first case whose
// predicate matches. Cases are evaluated in the order given. When nothing
// matches and no Otherwise case is present, the chain fails with ErrNoRoute
// (and stops, under the default policy).
//
// Example:
//
//	route := pipego.Switch("route-payment",
//	    pipego.CaseWhen(func(p Payment) bool { return p.Amount > 10_000 }, highValue),
//	    pipego.CaseWhen(func(p Payment) bool { return p.Method == "crypto" }, crypto),
//	    pipego.Otherwise(standard),
//	)
func Switch[T any](name Name, cases ...Case[T]) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], fr Frame) State[T] {
			for i, c := range cases {
				if !c.pred(in.Value) {
					continue
				}
				out := c.op.apply(ctx, in, fr.sub(i))
				if out.Err != nil && in.Err == nil {
					out.Err = prependPath(name, in.Value, out.Err)
				}
				return out
			}
			return in.Fail(newError(name, in.Value, ErrNoRoute))
		},
	}
}

// Router is a standalone, observable form of Switch for routing-heavy
// chains: it carries its own metrics, spans, and hookz events, and its
// cases can be extended after construction. Build it once, register
// instrumentation, and mount it with Operator.
type Router[T any] struct {
	name    Name
	cases   []Case[T]
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[SwitchEvent]
}

// NewRouter creates a Router with the given cases.
func NewRouter[T any](name Name, cases ...Case[T]) *Router[T] {
	metrics := metricz.New()
	metrics.Counter(SwitchEvaluationsTotal)
	metrics.Counter(SwitchMatchedTotal)
	metrics.Counter(SwitchDefaultTotal)
	metrics.Counter(SwitchUnmatchedTotal)

	return &Router[T]{
		name:    name,
		cases:   cases,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[SwitchEvent](),
	}
}

// AddCase appends a case. Cases are evaluated in insertion order, so add
// an Otherwise case last.
func (r *Router[T]) AddCase(c Case[T]) *Router[T] {
	r.cases = append(r.cases, c)
	return r
}

// Operator returns the router as a pipe operator.
func (r *Router[T]) Operator() Operator[T] {
	return Operator[T]{
		name: r.name,
		fn: func(ctx context.Context, in State[T], fr Frame) State[T] {
			r.metrics.Counter(SwitchEvaluationsTotal).Inc()

			ctx, span := r.tracer.StartSpan(ctx, SwitchEvaluateSpan)
			defer span.Finish()

			for i, c := range r.cases {
				if !c.pred(in.Value) {
					continue
				}
				if c.isDefault {
					r.metrics.Counter(SwitchDefaultTotal).Inc()
				} else {
					r.metrics.Counter(SwitchMatchedTotal).Inc()
				}
				span.SetTag(SwitchTagMatched, "true")
				span.SetTag(SwitchTagCase, c.op.name)
				_ = r.hooks.Emit(ctx, SwitchEventMatched, SwitchEvent{ //nolint:errcheck
					Name:      r.name,
					CaseName:  c.op.name,
					Matched:   true,
					Default:   c.isDefault,
					Timestamp: time.Now(),
				})

				out := c.op.apply(ctx, in, fr.sub(i))
				if out.Err != nil && in.Err == nil {
					out.Err = prependPath(r.name, in.Value, out.Err)
				}
				return out
			}

			r.metrics.Counter(SwitchUnmatchedTotal).Inc()
			span.SetTag(SwitchTagMatched, "false")
			_ = r.hooks.Emit(ctx, SwitchEventUnmatched, SwitchEvent{ //nolint:errcheck
				Name:      r.name,
				Matched:   false,
				Timestamp: time.Now(),
			})
			return in.Fail(newError(r.name, in.Value, ErrNoRoute))
		},
	}
}

// OnMatched registers a handler fired when a case matches.
func (r *Router[T]) OnMatched(handler func(context.Context, SwitchEvent) error) error {
	_, err := r.hooks.Hook(SwitchEventMatched, handler)
	return err
}

// OnUnmatched registers a handler fired when no case matches.
func (r *Router[T]) OnUnmatched(handler func(context.Context, SwitchEvent) error) error {
	_, err := r.hooks.Hook(SwitchEventUnmatched, handler)
	return err
}

// Metrics returns the router's metrics registry.
func (r *Router[T]) Metrics() *metricz.Registry {
	return r.metrics
}

// Name returns the router's name.
func (r *Router[T]) Name() Name {
	return r.name
}
