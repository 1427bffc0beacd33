package pipego

import "context"

// CatchError creates a recovery operator. When the state carries an error,
// the handler receives the last good value and the error, and its return
// value resumes the chain: the error is cleared and the stopped flag
// lowered. When no error is present, the state passes through untouched.
//
// CatchError is the only way a chain recovers under the default stop
// policy, and the only way the error clears under the continue policy.
//
// Example:
//
//	safe := pipego.New(raw).Then(
//	    pipego.MapErr("parse", parseConfig),
//	    pipego.CatchError("defaults", func(_ Config, err error) Config {
//	        return DefaultConfig
//	    }),
//	)
func CatchError[T any](name Name, handler func(T, error) T) Operator[T] {
	return Operator[T]{
		name:     name,
		recovers: true,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			if in.Err == nil {
				return in
			}
			return in.Recover(handler(in.Value, in.Err))
		},
	}
}
