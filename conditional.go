package pipego

import "context"

// When creates an operator that applies op only when the predicate returns
// true; otherwise the state passes through unchanged. This keeps the
// condition explicit and testable instead of buried inside a Map.
//
// Example:
//
//	discount := pipego.When("premium-discount",
//	    func(o Order) bool { return o.Tier == "premium" },
//	    pipego.Map("apply", func(o Order) Order { o.Total *= 0.9; return o }),
//	)
func When[T any](name Name, pred func(T) bool, op Operator[T]) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(ctx context.Context, in State[T], fr Frame) State[T] {
			if !pred(in.Value) {
				return in
			}
			out := op.apply(ctx, in, fr.sub(0))
			if out.Err != nil && in.Err == nil {
				out.Err = prependPath(name, in.Value, out.Err)
			}
			return out
		},
	}
}

// Unless is When with the predicate inverted: op applies only when the
// predicate returns false.
func Unless[T any](name Name, pred func(T) bool, op Operator[T]) Operator[T] {
	return When(name, func(v T) bool { return !pred(v) }, op)
}
