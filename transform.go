package pipego

import "context"

// Map creates an operator that applies a pure transformation to the value.
// Map is the simplest operator - use it when the operation always succeeds
// and always produces a value.
//
// A panic inside fn is captured as the chain's error; it does not escape
// Execute. If the transformation can fail in an expected way, use MapErr
// instead so the failure carries a real error.
//
// Example:
//
//	double := pipego.Map("double", func(n int) int { return n * 2 })
func Map[T any](name Name, fn func(T) T) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			return in.WithValue(fn(in.Value))
		},
	}
}

// MapErr creates an operator from a transformation that may fail. On error
// the value stays frozen at the input and the error is captured on the
// state; what happens next is the engine's policy decision.
//
// MapErr is the workhorse for validation, parsing, and lookups:
//
//	parse := pipego.MapErr("parse", func(s string) (string, error) {
//	    if s == "" {
//	        return "", errors.New("empty input")
//	    }
//	    return strings.ToUpper(s), nil
//	})
func MapErr[T any](name Name, fn func(T) (T, error)) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			v, err := fn(in.Value)
			if err != nil {
				return in.Fail(newError(name, in.Value, err))
			}
			return in.WithValue(v)
		},
	}
}

// MapCtx creates an operator from a context-aware transformation that may
// block. This is the asynchronous counterpart of MapErr: the chain suspends
// at the call and no later operator runs until it returns. Long operations
// should honor ctx cancellation.
//
// Example:
//
//	fetch := pipego.MapCtx("fetch-user", func(ctx context.Context, id string) (string, error) {
//	    return client.LookupName(ctx, id)
//	})
func MapCtx[T any](name Name, fn func(context.Context, T) (T, error)) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], _ Frame) State[T] {
			v, err := fn(ctx, in.Value)
			if err != nil {
				return in.Fail(newError(name, in.Value, err))
			}
			return in.WithValue(v)
		},
	}
}
