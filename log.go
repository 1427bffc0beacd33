package pipego

import "context"

// Log creates an operator that writes the current value to the pipe's log
// sink at info level and passes it through unchanged. The sink defaults to
// a no-op logger; set one with WithLogger.
//
// Log is an observability hook, not part of the value contract: a chain
// behaves identically with logging stubbed out.
//
//	p := pipego.New(order, pipego.WithLogger(logger)).Then(
//	    validate,
//	    pipego.Log[Order]("after-validate"),
//	    price,
//	)
func Log[T any](name Name) Operator[T] {
	return FromFunc(name, func(_ context.Context, in State[T], fr Frame) State[T] {
		fr.Logger.Info().
			Str("operator", name).
			Interface("value", in.Value).
			Msg("pipe value")
		return in
	})
}

// Debug creates an operator that writes the full state record - value,
// stopped flag, error, and metadata - to the pipe's log sink at debug
// level. Unlike Log it also runs when the chain is stopped, so it can be
// dropped anywhere to inspect a misbehaving chain.
func Debug[T any](name Name) Operator[T] {
	op := FromFunc(name, func(_ context.Context, in State[T], fr Frame) State[T] {
		fr.Logger.Debug().
			Str("operator", name).
			Interface("value", in.Value).
			Bool("stopped", in.Stopped).
			Err(in.Err).
			Interface("metadata", in.Metadata).
			Msg("pipe state")
		return in
	})
	return Recovery(op)
}
