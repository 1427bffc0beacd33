// Package pipego provides a small, type-safe library for threading a value
// through an ordered chain of operators.
//
// # Overview
//
// A pipe carries a single state record through its operator chain: the current
// value, a stopped flag, an optional error, and a metadata map. Every operator
// derives a new state from the previous one; nothing is mutated in place. This
// one transition rule is enough to express mapping, filtering, side effects,
// conditional branching, routing, recovery, retry, and timeouts.
//
// # Core Concepts
//
//   - State[T]: the record threaded through the chain
//   - Operator[T]: a named, pure state transition created with factory functions
//   - Pipe[T]: an initial value plus an operator list, built with New and Then
//
// Chains are built immutably: Then returns a new pipe whose operator list is
// the concatenation of the old list and the new operators, so a partially
// built pipe is a safe template for multiple branches.
//
// Execution is fail-contained: operator errors and panics are captured into
// the state's error field and never escape Execute. Only Run surfaces the
// error as a return value; Value suppresses it with a diagnostic log.
//
// # Operators
//
// Transformation and effects:
//
//	double := pipego.Map("double", func(n int) int { return n * 2 })
//	trim := pipego.MapErr("trim", func(s string) (string, error) {
//	    if s == "" {
//	        return "", errors.New("empty input")
//	    }
//	    return strings.TrimSpace(s), nil
//	})
//	audit := pipego.Tap("audit", func(n int) { log.Println(n) })
//
// Control flow:
//
//	adults := pipego.Filter("adults", func(u User) bool { return u.Age >= 18 })
//	routed := pipego.Switch("route",
//	    pipego.CaseWhen(isPremium, premiumOp),
//	    pipego.Otherwise(standardOp),
//	)
//
// Recovery:
//
//	recovered := pipego.CatchError("fallback", func(u User, err error) User {
//	    return defaultUser
//	})
//	retried := pipego.Retry("retry-fetch", 3)
//
// # Stop Semantics
//
// Once an operator stops the chain (a failed Filter, an exhausted Take, an
// error under the default policy), the value is frozen at the last good value
// and later operators are skipped entirely. Recovery operators (CatchError,
// Retry) still run and can resume the chain.
//
// # Terminal Consumption
//
//	p := pipego.New(5).Then(double)
//	state := p.Execute(ctx)    // full {value, stopped, err, metadata} record
//	v := p.Value(ctx)          // zero value on stop or error, logs the error
//	v, err := p.Run(ctx)       // surfaces the error
//	p.Subscribe(ctx, onNext, onError, onComplete)
//
// # Observability
//
// Each pipe carries a metricz registry, a tracez tracer, and hookz event
// hooks. Log and Debug operators write to the pipe's zerolog sink, which
// defaults to a no-op logger so tests stay silent.
package pipego
