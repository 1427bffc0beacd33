package pipego

import (
	"context"
	"sync"
)

// Counter is an explicit cross-execution counter for TakeWith and SkipWith.
// Counters are deliberately shared state: create one per logical stream of
// executions and do not reuse it across unrelated pipes. Reset rewinds it.
type Counter struct {
	mu sync.Mutex
	n  int
}

// NewCounter creates a counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// next increments and returns the count.
func (c *Counter) next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Reset rewinds the counter to zero.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}

// Take creates an operator that lets the step pass n times and stops the
// chain on every pass after that. The count lives in a per-execution cell
// owned by the engine, so it never leaks between executions: each Execute
// call starts the count fresh, and repeated consumption of the same pipe
// stays idempotent.
//
// Within a single execution, a step only runs more than once under retry,
// so the per-execution form mostly matters as a guard. To count across
// executions - the classic take-n-elements use, where one pipe template is
// executed once per element - share a Counter with TakeWith.
func Take[T any](name Name, n int) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], fr Frame) State[T] {
			if fr.Cell.Next() > n {
				return in.Stop()
			}
			return in
		},
	}
}

// Skip creates an operator that stops the chain for the first n passes and
// lets every pass after that through. Like Take, the count is scoped to one
// execution; use SkipWith for cross-execution skipping.
func Skip[T any](name Name, n int) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], fr Frame) State[T] {
			if fr.Cell.Next() <= n {
				return in.Stop()
			}
			return in
		},
	}
}

// TakeWith is Take counting on an explicit shared Counter, for use when one
// pipe template is executed once per element:
//
//	firstTwo := pipego.NewCounter()
//	gate := pipego.TakeWith[Item]("first-two", 2, firstTwo)
//	for _, item := range items {
//	    // the third and later executions stop at the gate
//	    pipego.New(item).Then(gate, process).Execute(ctx)
//	}
//
// The counter belongs to one logical stream; sharing it across concurrently
// running unrelated pipes is cross-talk, not composition.
func TakeWith[T any](name Name, n int, c *Counter) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			if c.next() > n {
				return in.Stop()
			}
			return in
		},
	}
}

// SkipWith is Skip counting on an explicit shared Counter.
func SkipWith[T any](name Name, n int, c *Counter) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			if c.next() <= n {
				return in.Stop()
			}
			return in
		},
	}
}

// TakeItems creates an operator over a slice value that truncates it to its
// first n items. The whole-slice counterpart of per-element Take.
func TakeItems[T any](name Name, n int) Operator[[]T] {
	return Map(name, func(items []T) []T {
		if n < 0 {
			n = 0
		}
		if len(items) <= n {
			return items
		}
		return items[:n:n]
	})
}

// SkipItems creates an operator over a slice value that drops its first n
// items.
func SkipItems[T any](name Name, n int) Operator[[]T] {
	return Map(name, func(items []T) []T {
		if n < 0 {
			n = 0
		}
		if len(items) <= n {
			return []T{}
		}
		return items[n:]
	})
}
