// Package tick provides the fixed-step dispatch core for a simulation
// server: a per-step callback registry, a monotonically accumulating
// in-world clock, and a delayed one-shot job scheduler with cancellation.
//
// Tick is designed as a library, not a service. The host owns a
// Dispatcher and calls Step once per server tick with the elapsed delta
// time. Everything else (globalstep callbacks, delayed jobs, gametime)
// advances synchronously inside that call, on the caller's goroutine.
//
// # Quick Start
//
//	d := tick.New(
//	    tick.WithLogger(logger),
//	    tick.WithInitialGametime(saved),
//	)
//
//	d.RegisterStep("spawner", func(dtime float64) { ... })
//	d.After(5.0, func(args []after.Arg) { ... })
//
//	for { // host server loop
//	    d.Step(dtime)
//	}
//
// # Architecture
//
// Each step executes in a fixed order: gametime advances first, then due
// delayed jobs fire, then globalsteps run in registration order. Code
// reading gametime from a callback therefore always observes the current
// step's value, and a zero-delay job fires before the same step's
// globalsteps run. That is the idiom for one-time run-time-only
// initialization.
//
// Scheduling and cancellation are safe from any goroutine; mutations are
// absorbed at pass boundaries so nothing races the step itself.
package tick
