package pipego

import "maps"

// Metadata is the side-channel map accumulated alongside the value.
// Writes are last-write-wins per key; insertion order is irrelevant.
type Metadata map[string]any

// State is the record threaded through a pipe's operator chain. It holds the
// current value, a stopped flag, an optional error, and accumulated metadata.
//
// A State is never mutated in place. Every derivation method returns a new
// record, and the metadata map is cloned before any write, so holding on to
// an earlier State is always safe.
//
// Stopped means the chain should cease further value transformation but keep
// propagating the frozen value through the remaining steps. An error with
// Stopped still false is only reachable under the ContinueOnError policy.
type State[T any] struct {
	Value    T
	Stopped  bool
	Err      error
	Metadata Metadata
}

// NewState creates the initial state for a pipe execution.
func NewState[T any](value T) State[T] {
	return State[T]{Value: value, Metadata: Metadata{}}
}

// WithValue returns a copy of the state carrying the new value.
func (s State[T]) WithValue(v T) State[T] {
	s.Value = v
	return s
}

// Stop returns a copy of the state with the stopped flag set. The value is
// left untouched, freezing it at the last good value.
func (s State[T]) Stop() State[T] {
	s.Stopped = true
	return s
}

// Fail returns a copy of the state carrying the error. The value is left
// untouched; whether the chain also stops is the engine's policy decision.
func (s State[T]) Fail(err error) State[T] {
	s.Err = err
	return s
}

// Recover returns a copy of the state with the error cleared, the stopped
// flag lowered, and the value replaced.
func (s State[T]) Recover(v T) State[T] {
	s.Value = v
	s.Err = nil
	s.Stopped = false
	return s
}

// WithMeta returns a copy of the state whose metadata carries key=val.
// The metadata map is cloned, not shared.
func (s State[T]) WithMeta(key string, val any) State[T] {
	md := make(Metadata, len(s.Metadata)+1)
	maps.Copy(md, s.Metadata)
	md[key] = val
	s.Metadata = md
	return s
}

// MergeMeta returns a copy of the state whose metadata is the shallow merge
// of the existing map and m, with keys in m overwriting existing keys.
func (s State[T]) MergeMeta(m Metadata) State[T] {
	if len(m) == 0 {
		return s
	}
	md := make(Metadata, len(s.Metadata)+len(m))
	maps.Copy(md, s.Metadata)
	maps.Copy(md, m)
	s.Metadata = md
	return s
}

// Meta returns the metadata value for key, if present.
func (s State[T]) Meta(key string) (any, bool) {
	v, ok := s.Metadata[key]
	return v, ok
}
