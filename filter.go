package pipego

import "context"

// Filter creates an operator that stops the chain when the predicate
// returns false. The value is left untouched, so the final state still
// carries the last good value for inspection; later operators are skipped
// (recovery operators excepted).
//
// When the predicate returns true, the value passes through unchanged.
//
// Example:
//
//	adults := pipego.Filter("adults", func(u User) bool { return u.Age >= 18 })
//
// Note the difference from When: Filter halts the chain on a false
// predicate, When merely skips its wrapped operator.
func Filter[T any](name Name, pred func(T) bool) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			if !pred(in.Value) {
				return in.Stop()
			}
			return in
		},
	}
}
