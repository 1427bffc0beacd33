package pipego

import (
	"context"
	"sync"
)

// Compose folds a sequence of operators into a single operator, applying
// them in order under the same skip rules as the engine: once a composed
// step stops or fails, later steps are skipped unless they are recovery
// operators. Policy decisions still belong to the engine, which sees the
// composite as one step.
//
// Compose works standalone, without a Pipe:
//
//	normalize := pipego.Compose("normalize",
//	    pipego.Map("trim", strings.TrimSpace),
//	    pipego.Map("lower", strings.ToLower),
//	)
func Compose[T any](name Name, ops ...Operator[T]) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], fr Frame) State[T] {
			cur := in
			for i, op := range ops {
				if (cur.Stopped || cur.Err != nil) && !op.recovers {
					continue
				}
				next := op.apply(ctx, cur, fr.sub(i))
				if next.Err != nil && cur.Err == nil {
					next.Err = prependPath(name, in.Value, next.Err)
				}
				cur = next
			}
			return cur
		},
	}
}

// Apply runs an operator on a bare value outside any pipe, returning the
// final state. Useful for testing a composed operator in isolation; the
// real clock and a no-op logger are used.
func Apply[T any](ctx context.Context, op Operator[T], value T) State[T] {
	cfg := parseOptions(nil)
	fr := Frame{Cell: &Cell{}, Clock: cfg.clock, Logger: &cfg.logger}
	return op.apply(ctx, NewState(value), fr)
}

// Join composes two plain functions of different types into one. This is
// the cross-type complement to Compose: a pipe is homogeneous in its value
// type, so type-changing steps live outside the chain as ordinary function
// composition.
//
//	atoiLen := pipego.Join(strconv.Itoa, func(s string) int { return len(s) })
func Join[A, B, C any](f func(A) B, g func(B) C) func(A) C {
	return func(a A) C {
		return g(f(a))
	}
}

// Parallel creates an operator that fans a batch of side-effect functions
// out concurrently and joins before the chain continues: every function
// must complete, successfully or not, before the next operator runs.
// Completion order does not matter. The value passes through unchanged; if
// any function fails or panics, the first error (in argument order) is
// captured on the state.
//
// Example:
//
//	fanout := pipego.Parallel("notify-all",
//	    func(ctx context.Context, o Order) error { return mailer.Send(ctx, o) },
//	    func(ctx context.Context, o Order) error { return audit.Record(ctx, o) },
//	)
func Parallel[T any](name Name, fns ...func(context.Context, T) error) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], _ Frame) State[T] {
			errs := make([]error, len(fns))
			var wg sync.WaitGroup
			wg.Add(len(fns))

			for i, fn := range fns {
				go func(i int, fn func(context.Context, T) error) {
					// Done must run even if fn panics, or Wait deadlocks.
					defer wg.Done()
					defer func() {
						if r := recover(); r != nil {
							errs[i] = panicError(r)
						}
					}()
					errs[i] = fn(ctx, in.Value)
				}(i, fn)
			}
			wg.Wait()

			for _, err := range errs {
				if err != nil {
					return in.Fail(newError(name, in.Value, err))
				}
			}
			return in
		},
	}
}
