package pipego

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoRoute is returned by Switch when no case matches and no Otherwise
// case was supplied.
var ErrNoRoute = errors.New("no matching route")

// Error provides rich context about an operator failure. It wraps the
// underlying error with the path of operator names that led to the failure
// (outermost first), the input that was being processed, and timing
// information.
//
// Errors are data inside a pipe: Execute returns them on the state, Run
// surfaces them as a return value, and Value suppresses them with a log.
type Error[T any] struct {
	InputData T
	Timestamp time.Time
	Err       error
	Path      []Name
	Duration  time.Duration
	Timeout   bool
	Canceled  bool
}

// newError wraps err with operator context. The path starts at the failing
// operator; wrapping operators prepend their own names as the error travels
// outward.
func newError[T any](name Name, input T, err error) *Error[T] {
	return &Error[T]{
		InputData: input,
		Timestamp: time.Now(),
		Err:       err,
		Path:      []Name{name},
		Timeout:   errors.Is(err, context.DeadlineExceeded),
		Canceled:  errors.Is(err, context.Canceled),
	}
}

// prependPath adds a wrapping operator's name to err's path when err is a
// pipe error, or wraps it fresh otherwise.
func prependPath[T any](name Name, input T, err error) error {
	var pipeErr *Error[T]
	if errors.As(err, &pipeErr) {
		pipeErr.Path = append([]Name{name}, pipeErr.Path...)
		return pipeErr
	}
	return newError(name, input, err)
}

// Error implements the error interface.
func (e *Error[T]) Error() string {
	path := "unknown"
	if len(e.Path) > 0 {
		path = e.Path[0]
		for _, n := range e.Path[1:] {
			path += " -> " + n
		}
	}
	if e.Timeout {
		return fmt.Sprintf("operator %q timed out after %v: %v", path, e.Duration, e.Err)
	}
	if e.Canceled {
		return fmt.Sprintf("operator %q canceled after %v: %v", path, e.Duration, e.Err)
	}
	return fmt.Sprintf("operator %q failed: %v", path, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *Error[T]) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the failure was caused by a timeout.
func (e *Error[T]) IsTimeout() bool {
	return e.Timeout || errors.Is(e.Err, context.DeadlineExceeded)
}

// IsCanceled reports whether the failure was caused by cancellation.
func (e *Error[T]) IsCanceled() bool {
	return e.Canceled || errors.Is(e.Err, context.Canceled)
}
