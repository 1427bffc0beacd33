package pipego

import (
	"context"
	"time"

	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the pipe engine.
const (
	// Metrics.
	PipeExecutionsTotal = metricz.Key("pipe.executions.total")
	PipeSuccessesTotal  = metricz.Key("pipe.successes.total")
	PipeStopsTotal      = metricz.Key("pipe.stops.total")
	PipeErrorsTotal     = metricz.Key("pipe.errors.total")
	PipeRecoveriesTotal = metricz.Key("pipe.recoveries.total")
	PipeDurationMs      = metricz.Key("pipe.duration.ms")

	// Spans.
	PipeExecuteSpan = tracez.Key("pipe.execute")
	PipeStepSpan    = tracez.Key("pipe.step")

	// Tags.
	PipeTagOperator = tracez.Tag("pipe.operator")
	PipeTagStopped  = tracez.Tag("pipe.stopped")
	PipeTagSuccess  = tracez.Tag("pipe.success")
	PipeTagError    = tracez.Tag("pipe.error")

	// Hook event keys.
	PipeEventStep     = hookz.Key("pipe.step")
	PipeEventStopped  = hookz.Key("pipe.stopped")
	PipeEventError    = hookz.Key("pipe.error")
	PipeEventRecovery = hookz.Key("pipe.recovery")
)

// PipeEvent represents a step-level execution event. It is emitted via hookz
// as each operator runs, allowing external systems to track chain progress,
// stops, failures, and recoveries.
type PipeEvent struct {
	Name         Name          // Pipe name
	OperatorName Name          // Operator that produced the event
	Stage        int           // Operator position (0-based)
	Stopped      bool          // Whether the chain is stopped after this step
	Err          error         // Error on the state after this step
	Duration     time.Duration // How long the step took
	Timestamp    time.Time     // When the event occurred
}

// Pipe threads an initial value through an ordered operator chain.
//
// Pipes are immutable: Then returns a new pipe whose operator list is the
// concatenation of the receiver's list and the supplied operators, leaving
// the receiver unchanged. A partially built pipe is therefore a safe
// template for multiple branches:
//
//	base := pipego.New(order).Then(validate, price)
//	express := base.Then(expressShipping)
//	standard := base.Then(standardShipping)
//
// All per-execution state (Take and Skip counters) lives in cells allocated
// fresh on every Execute call, so a pipe value is safe for concurrent
// execution and repeated consumption produces the same outcome each time.
//
// # Execution
//
// Operators run strictly in registration order. A stopped state skips every
// later operator except recovery operators (CatchError, Retry), freezing the
// value at the last good value. New errors are subject to the configured
// ErrorHandling policy: stop (default), continue, or in-place retry.
// Operator errors and panics never escape Execute; they surface only through
// Run, or as a diagnostic log via Value.
//
// # Observability
//
// Metrics:
//   - pipe.executions.total: Counter of Execute calls
//   - pipe.successes.total: Counter of executions finishing clean
//   - pipe.stops.total: Counter of executions finishing stopped
//   - pipe.errors.total: Counter of executions finishing with an error
//   - pipe.recoveries.total: Counter of recovered failures
//   - pipe.duration.ms: Gauge of execution duration
//
// Traces:
//   - pipe.execute: Parent span for the whole chain
//   - pipe.step: Child span per operator
//
// Events (via hooks):
//   - pipe.step: Fired after each executed operator
//   - pipe.stopped: Fired when a step newly stops the chain without error
//   - pipe.error: Fired when a step raises a new error
//   - pipe.recovery: Fired when a recovery step clears an error
//
// Derived pipes share the parent's metrics registry, tracer, and hooks, so
// instrumentation registered on a template observes all of its branches.
type Pipe[T any] struct {
	initial T
	ops     []Operator[T]
	name    Name
	cfg     config
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[PipeEvent]
}

// New creates a pipe carrying the initial value.
func New[T any](value T, opts ...Option) *Pipe[T] {
	metrics := metricz.New()
	metrics.Counter(PipeExecutionsTotal)
	metrics.Counter(PipeSuccessesTotal)
	metrics.Counter(PipeStopsTotal)
	metrics.Counter(PipeErrorsTotal)
	metrics.Counter(PipeRecoveriesTotal)
	metrics.Gauge(PipeDurationMs)

	return &Pipe[T]{
		initial: value,
		name:    "pipe",
		cfg:     parseOptions(opts),
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[PipeEvent](),
	}
}

// Named returns a copy of the pipe carrying the given name. The name appears
// in events and debug logs.
func (p *Pipe[T]) Named(name Name) *Pipe[T] {
	c := *p
	c.name = name
	return &c
}

// Then returns a new pipe whose operator chain is the receiver's chain
// followed by ops. The receiver is not modified.
func (p *Pipe[T]) Then(ops ...Operator[T]) *Pipe[T] {
	c := *p
	c.ops = make([]Operator[T], 0, len(p.ops)+len(ops))
	c.ops = append(c.ops, p.ops...)
	c.ops = append(c.ops, ops...)
	return &c
}

// Execute runs the chain and returns the final state. It never returns an
// error value: failures are captured on the state's Err field.
func (p *Pipe[T]) Execute(ctx context.Context) State[T] {
	p.metrics.Counter(PipeExecutionsTotal).Inc()
	start := time.Now()

	ctx, span := p.tracer.StartSpan(ctx, PipeExecuteSpan)
	cur := NewState(p.initial)
	cells := make([]Cell, len(p.ops))
	lastFailed := -1

	for i := range p.ops {
		op := p.ops[i]
		if cur.Stopped && !op.recovers {
			continue
		}
		fr := Frame{Cell: &cells[i], Clock: p.cfg.clock, Logger: &p.cfg.logger}

		if op.retries > 0 {
			cur, lastFailed = p.runRetry(ctx, op, cur, cells, lastFailed, i)
			continue
		}

		prevErr := cur.Err
		next := p.step(ctx, op, cur, fr, i)

		switch {
		case next.Err != nil && prevErr == nil:
			lastFailed = i
			next = p.applyPolicy(ctx, op, cur, next, fr, i)
		case next.Err == nil && prevErr != nil:
			// A recovery operator cleared the error.
			lastFailed = -1
			p.metrics.Counter(PipeRecoveriesTotal).Inc()
			p.emit(ctx, PipeEventRecovery, op, i, next, 0)
		}
		cur = next
	}

	elapsed := time.Since(start)
	p.metrics.Gauge(PipeDurationMs).Set(float64(elapsed.Milliseconds()))
	switch {
	case cur.Err != nil:
		p.metrics.Counter(PipeErrorsTotal).Inc()
		span.SetTag(PipeTagSuccess, "false")
		span.SetTag(PipeTagError, cur.Err.Error())
	case cur.Stopped:
		p.metrics.Counter(PipeStopsTotal).Inc()
		span.SetTag(PipeTagSuccess, "true")
		span.SetTag(PipeTagStopped, "true")
	default:
		p.metrics.Counter(PipeSuccessesTotal).Inc()
		span.SetTag(PipeTagSuccess, "true")
	}
	span.Finish()
	return cur
}

// step runs a single operator with its own span and step event.
func (p *Pipe[T]) step(ctx context.Context, op Operator[T], in State[T], fr Frame, stage int) State[T] {
	stepCtx, span := p.tracer.StartSpan(ctx, PipeStepSpan)
	span.SetTag(PipeTagOperator, op.name)
	start := time.Now()

	out := op.apply(stepCtx, in, fr)

	elapsed := time.Since(start)
	if out.Err != nil {
		span.SetTag(PipeTagError, out.Err.Error())
	}
	span.SetTag(PipeTagStopped, boolTag(out.Stopped))
	span.Finish()

	if p.cfg.debug {
		p.cfg.logger.Debug().
			Str("pipe", p.name).
			Str("operator", op.name).
			Int("stage", stage).
			Bool("stopped", out.Stopped).
			Err(out.Err).
			Dur("duration", elapsed).
			Msg("step")
	}
	p.emit(ctx, PipeEventStep, op, stage, out, elapsed)
	if out.Stopped && !in.Stopped && out.Err == nil {
		p.emit(ctx, PipeEventStopped, op, stage, out, elapsed)
	}
	return out
}

// applyPolicy decides what a newly raised error does to the chain.
func (p *Pipe[T]) applyPolicy(ctx context.Context, op Operator[T], pre, failed State[T], fr Frame, stage int) State[T] {
	p.emit(ctx, PipeEventError, op, stage, failed, 0)

	switch p.cfg.errorHandling {
	case ContinueOnError:
		// Error rides along; later operators keep running on the last
		// good value.
		return failed
	case RetryOnError:
		next := failed
		for attempt := 0; attempt < p.cfg.maxRetries && next.Err != nil; attempt++ {
			if ctx.Err() != nil {
				break
			}
			next = p.step(ctx, op, pre, fr, stage)
		}
		if next.Err != nil {
			return next.Stop()
		}
		p.metrics.Counter(PipeRecoveriesTotal).Inc()
		p.emit(ctx, PipeEventRecovery, op, stage, next, 0)
		return next
	default:
		return failed.Stop()
	}
}

// runRetry handles a Retry operator: re-run the recorded failing step up to
// the operator's attempt budget, with exponential delays when configured.
func (p *Pipe[T]) runRetry(ctx context.Context, op Operator[T], cur State[T], cells []Cell, lastFailed, stage int) (State[T], int) {
	if cur.Err == nil || lastFailed < 0 {
		// Nothing to retry; pass through.
		return cur, lastFailed
	}

	failed := p.ops[lastFailed]
	fr := Frame{Cell: &cells[lastFailed], Clock: p.cfg.clock, Logger: &p.cfg.logger}
	// Re-attempt from the last good value with the failure cleared.
	base := cur
	base.Err = nil
	base.Stopped = false

	delay := op.delay
	for attempt := 0; attempt < op.retries; attempt++ {
		if attempt > 0 && delay > 0 {
			select {
			case <-p.cfg.clock.After(delay):
				delay *= 2
			case <-ctx.Done():
				return cur.Fail(prependPath(op.name, cur.Value, ctx.Err())), lastFailed
			}
		}
		if ctx.Err() != nil {
			return cur.Fail(prependPath(op.name, cur.Value, ctx.Err())), lastFailed
		}

		next := p.step(ctx, failed, base, fr, lastFailed)
		if next.Err == nil {
			p.metrics.Counter(PipeRecoveriesTotal).Inc()
			p.emit(ctx, PipeEventRecovery, op, stage, next, 0)
			return next, -1
		}
	}
	// Budget exhausted; the original failure stands.
	return cur, lastFailed
}

func (p *Pipe[T]) emit(ctx context.Context, key hookz.Key, op Operator[T], stage int, st State[T], d time.Duration) {
	_ = p.hooks.Emit(ctx, key, PipeEvent{ //nolint:errcheck
		Name:         p.name,
		OperatorName: op.name,
		Stage:        stage,
		Stopped:      st.Stopped,
		Err:          st.Err,
		Duration:     d,
		Timestamp:    time.Now(),
	})
}

// Value runs the chain and returns the final value. When the chain stopped
// or failed, it returns the zero value instead; a failure is reported only
// as a diagnostic log on the configured logger. Use Run when the caller
// needs the error.
func (p *Pipe[T]) Value(ctx context.Context) T {
	result := p.Execute(ctx)
	if result.Err != nil {
		if !p.cfg.quietValue {
			p.cfg.logger.Error().
				Str("pipe", p.name).
				Err(result.Err).
				Msg("value suppressed pipe error")
		}
		var zero T
		return zero
	}
	if result.Stopped {
		var zero T
		return zero
	}
	return result.Value
}

// Run runs the chain and surfaces the final error, if any. This is the one
// consumption method that converts the internal error-as-data model into a
// returned failure. The value returned alongside a non-nil error is the
// last good value.
func (p *Pipe[T]) Run(ctx context.Context) (T, error) {
	result := p.Execute(ctx)
	return result.Value, result.Err
}

// Subscribe runs the chain and dispatches exactly one of onNext+onComplete
// or onError, based on the final state. Handlers may be nil. Repeated
// subscription on the same pipe produces the same outcome each time.
func (p *Pipe[T]) Subscribe(ctx context.Context, onNext func(T), onError func(error), onComplete func()) {
	result := p.Execute(ctx)
	if result.Err != nil {
		if onError != nil {
			onError(result.Err)
		}
		return
	}
	if onNext != nil {
		onNext(result.Value)
	}
	if onComplete != nil {
		onComplete()
	}
}

// Name returns the pipe's name.
func (p *Pipe[T]) Name() Name {
	return p.name
}

// Operators returns the number of operators in the chain.
func (p *Pipe[T]) Operators() int {
	return len(p.ops)
}

// OnStep registers a handler fired after every executed operator.
func (p *Pipe[T]) OnStep(handler func(context.Context, PipeEvent) error) error {
	_, err := p.hooks.Hook(PipeEventStep, handler)
	return err
}

// OnStop registers a handler fired when a step newly stops the chain
// without an error.
func (p *Pipe[T]) OnStop(handler func(context.Context, PipeEvent) error) error {
	_, err := p.hooks.Hook(PipeEventStopped, handler)
	return err
}

// OnError registers a handler fired when a step raises a new error.
func (p *Pipe[T]) OnError(handler func(context.Context, PipeEvent) error) error {
	_, err := p.hooks.Hook(PipeEventError, handler)
	return err
}

// OnRecovery registers a handler fired when a recovery step clears an error.
func (p *Pipe[T]) OnRecovery(handler func(context.Context, PipeEvent) error) error {
	_, err := p.hooks.Hook(PipeEventRecovery, handler)
	return err
}

// Metrics returns the pipe's metrics registry.
func (p *Pipe[T]) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the pipe's tracer.
func (p *Pipe[T]) Tracer() *tracez.Tracer {
	return p.tracer
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
