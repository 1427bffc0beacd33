package pipego

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// Name is a human-readable identifier attached to operators. Names appear in
// error paths, spans, events, and log lines; they carry no uniqueness
// requirement.
type Name = string

// Cell is a per-execution state slot owned by the engine. The engine
// allocates one cell per operator position for every Execute call, so an
// operator value never carries counters of its own and is safe to reuse
// across pipes and across repeated executions.
type Cell struct {
	count int
	sub   map[int]*Cell
}

// Next increments and returns the cell's counter.
func (c *Cell) Next() int {
	c.count++
	return c.count
}

// Count returns the counter without incrementing.
func (c *Cell) Count() int {
	return c.count
}

// Sub returns the nested cell at position i, allocating it on first use.
// Wrapping operators (Compose, When, Switch, Timeout) hand sub-cells to the
// operators they contain so nested counters stay independent.
func (c *Cell) Sub(i int) *Cell {
	if c.sub == nil {
		c.sub = make(map[int]*Cell)
	}
	s, ok := c.sub[i]
	if !ok {
		s = &Cell{}
		c.sub[i] = s
	}
	return s
}

// Frame is the per-step execution environment passed to every operator
// alongside the state: the step's cell, the pipe's clock, and the pipe's
// log sink.
type Frame struct {
	Cell   *Cell
	Clock  clockz.Clock
	Logger *zerolog.Logger
}

// sub derives a frame for a nested operator at position i.
func (fr Frame) sub(i int) Frame {
	fr.Cell = fr.Cell.Sub(i)
	return fr
}

// OpFunc is the low-level transition applied by the engine: state in, state
// out. Factories wrap plain user functions into this form; FromFunc exposes
// it directly for operators that need the whole record.
type OpFunc[T any] func(ctx context.Context, in State[T], fr Frame) State[T]

// Operator is a named, pure transformation of pipe state. Operators are
// values: build them once with the factory functions and reuse them freely.
type Operator[T any] struct {
	name     Name
	fn       OpFunc[T]
	recovers bool // runs even when the chain is stopped
	retries  int  // >0 marks a retry step, handled by the engine
	delay    time.Duration
}

// Name returns the operator's name.
func (o Operator[T]) Name() Name {
	return o.name
}

// apply runs the transition. A nil fn (the zero Operator, or Retry, whose
// work lives in the engine loop) passes the state through unchanged.
//
// apply is the single panic boundary: every invocation path (the engine
// loop, Compose, When, Switch, Timeout, Apply) goes through it, so a panic
// in any transition, including raw FromFunc operators, is captured as an
// error on the state rather than escaping.
func (o Operator[T]) apply(ctx context.Context, in State[T], fr Frame) (out State[T]) {
	if o.fn == nil {
		return in
	}
	defer recoverToState(&out, in, o.name)
	return o.fn(ctx, in, fr)
}

// FromFunc wraps a raw state transition as an operator. This is the escape
// hatch for operators that need to read or write the stopped flag, the
// error, or metadata directly; prefer the higher-level factories otherwise.
//
// The function must treat the incoming state as read-only and return a
// derived copy (use the State derivation methods).
func FromFunc[T any](name Name, fn OpFunc[T]) Operator[T] {
	return Operator[T]{name: name, fn: fn}
}

// Recovery marks an operator as a recovery step: the engine invokes it even
// when the chain is stopped. CatchError and Retry are built on this; use it
// directly only for custom recovery operators created with FromFunc.
func Recovery[T any](op Operator[T]) Operator[T] {
	op.recovers = true
	return op
}

// Annotate creates an operator that records a metadata entry derived from
// the current value. The value itself passes through unchanged.
func Annotate[T any](name Name, key string, fn func(T) any) Operator[T] {
	return Operator[T]{
		name: name,
		fn: func(_ context.Context, in State[T], _ Frame) State[T] {
			return in.WithMeta(key, fn(in.Value))
		},
	}
}

// recoverToState converts an operator panic into a captured error on the
// state, preserving the pre-panic value. Installed with defer in
// Operator.apply; panics never escape Execute.
func recoverToState[T any](out *State[T], in State[T], name Name) {
	if r := recover(); r != nil {
		*out = in.Fail(newError(name, in.Value, panicError(r)))
	}
}

// panicError normalizes a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("operator panicked: %w", err)
	}
	return fmt.Errorf("operator panicked: %v", r)
}
