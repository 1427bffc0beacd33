package pipego

import "time"

// Retry creates a recovery operator that re-runs the step that failed.
// When the chain reaches it carrying an error, the engine re-attempts the
// recorded failing operator up to maxAttempts times from the last good
// value; the first success clears the error and resumes the chain, and an
// exhausted budget leaves the original failure standing. When no error is
// present, Retry is a no-op.
//
// Attempts run back to back. For spacing between attempts, use
// RetryBackoff. For a configuration-level policy that retries every
// operator in place, use WithErrorHandling(RetryOnError) instead.
//
// Example:
//
//	p := pipego.New(req).Then(
//	    pipego.MapCtx("call-api", callAPI),
//	    pipego.Retry("retry-api", 3),
//	)
func Retry[T any](name Name, maxAttempts int) Operator[T] {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Operator[T]{
		name:     name,
		recovers: true,
		retries:  maxAttempts,
	}
}

// RetryBackoff creates a Retry whose attempts are spaced by an exponential
// delay: baseDelay before the second attempt, doubling thereafter. The
// delay waits on the pipe's clock, so tests can drive it with a fake clock,
// and is cut short by context cancellation.
//
// With baseDelay=1s and maxAttempts=4 the waits are 1s, 2s, 4s.
func RetryBackoff[T any](name Name, maxAttempts int, baseDelay time.Duration) Operator[T] {
	op := Retry[T](name, maxAttempts)
	op.delay = baseDelay
	return op
}
