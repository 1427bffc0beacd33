package pipego

import "context"

// Tap creates an operator that performs a side effect and passes the value
// through unchanged. Use it for logging, metrics, notifications, or audit
// trails that ride alongside the main flow.
//
// A panic inside fn is captured as the chain's error. For side effects that
// can fail in an expected way, use TapErr.
//
// Example:
//
//	audit := pipego.Tap("audit", func(o Order) { auditLog.Record(o) })
func Tap[T any](name Name, fn func(T)) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			fn(in.Value)
			return in
		},
	}
}

// TapErr creates an operator that performs a fallible side effect. The value
// always passes through unchanged; a returned error is captured on the state
// and handled by the engine's policy.
//
// Unlike MapErr, TapErr cannot transform the value. This keeps side effects
// explicit and separately testable.
func TapErr[T any](name Name, fn func(T) error) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			if err := fn(in.Value); err != nil {
				return in.Fail(newError(name, in.Value, err))
			}
			return in
		},
	}
}

// TapCtx creates an operator for a context-aware, possibly blocking side
// effect. The asynchronous counterpart of TapErr: the chain suspends at the
// call and resumes when it returns.
//
// Example:
//
//	notify := pipego.TapCtx("notify", func(ctx context.Context, o Order) error {
//	    return notifier.Send(ctx, o.CustomerID)
//	})
func TapCtx[T any](name Name, fn func(context.Context, T) error) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], _ Frame) State[T] {
			if err := fn(ctx, in.Value); err != nil {
				return in.Fail(newError(name, in.Value, err))
			}
			return in
		},
	}
}
