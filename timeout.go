package pipego

import (
	"context"
	"time"
)

// Timeout wraps an operator with a hard time limit. If the wrapped operator
// has not returned when the duration elapses, the chain fails with a
// timeout-flagged error and the value stays frozen at the input; the
// wrapped operator's context is canceled so it can abandon its work.
//
// The deadline waits on the pipe's clock, so tests can trigger expiry with
// a fake clock. An operator that ignores its context may keep running in
// the background after expiry; its result is discarded.
//
// Timeout composes naturally with Retry:
//
//	p := pipego.New(req).Then(
//	    pipego.Timeout("bounded-call", pipego.MapCtx("call", callAPI), 2*time.Second),
//	    pipego.Retry("retry-call", 3),
//	)
func Timeout[T any](name Name, op Operator[T], d time.Duration) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], fr Frame) State[T] {
			opCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			done := make(chan State[T], 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- in.Fail(newError(name, in.Value, panicError(r)))
					}
				}()
				done <- op.apply(opCtx, in, fr.sub(0))
			}()

			select {
			case out := <-done:
				if out.Err != nil && in.Err == nil {
					out.Err = prependPath(name, in.Value, out.Err)
				}
				return out
			case <-fr.Clock.After(d):
				cancel()
				err := newError(name, in.Value, context.DeadlineExceeded)
				err.Timeout = true
				err.Duration = d
				return in.Fail(err)
			case <-ctx.Done():
				return in.Fail(newError(name, in.Value, ctx.Err()))
			}
		},
	}
}

// Delay creates an operator that pauses the chain for d before passing the
// value through unchanged. The pause waits on the pipe's clock and is cut
// short by context cancellation, which fails the chain with the context's
// error.
func Delay[T any](name Name, d time.Duration) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], fr Frame) State[T] {
			select {
			case <-fr.Clock.After(d):
				return in
			case <-ctx.Done():
				return in.Fail(newError(name, in.Value, ctx.Err()))
			}
		},
	}
}
