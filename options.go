package pipego

import (
	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// ErrorHandling selects what the engine does when an operator raises a new
// error.
type ErrorHandling int

const (
	// StopOnError halts all further transformation at the first error; the
	// final value is the last good value before the failing step. This is
	// the default.
	StopOnError ErrorHandling = iota

	// ContinueOnError records the error but keeps running later operators on
	// the last good value. The error rides along uncleared until a
	// CatchError operator clears it.
	ContinueOnError

	// RetryOnError re-attempts the failing operator in place, up to the
	// configured maximum, then falls back to StopOnError semantics.
	RetryOnError
)

// Option configures a pipe at construction time.
type Option func(*config)

type config struct {
	errorHandling ErrorHandling
	maxRetries    int
	logger        zerolog.Logger
	quietValue    bool
	clock         clockz.Clock
	debug         bool
}

func parseOptions(opts []Option) config {
	cfg := config{
		errorHandling: StopOnError,
		maxRetries:    3,
		logger:        zerolog.Nop(),
		clock:         clockz.RealClock,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithErrorHandling selects the engine's error policy.
func WithErrorHandling(eh ErrorHandling) Option {
	return func(c *config) { c.errorHandling = eh }
}

// WithMaxRetries sets the attempt budget used by the RetryOnError policy.
// Values below one are clamped to one.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
	}
}

// WithLogger sets the sink used by the Log and Debug operators and by the
// diagnostic emitted when Value suppresses an error. Defaults to a no-op
// logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithQuietValue disables the diagnostic log emitted when Value suppresses
// an error.
func WithQuietValue() Option {
	return func(c *config) { c.quietValue = true }
}

// WithClock sets a custom clock for Timeout, Delay, and retry backoff.
// Primarily for tests with a fake clock.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithDebug makes the engine log every state transition at debug level to
// the configured logger.
func WithDebug() Option {
	return func(c *config) { c.debug = true }
}
