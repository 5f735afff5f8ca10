package tick

import (
	"log/slog"
	"time"

	"github.com/voxelforge/tick/after"
	"github.com/voxelforge/tick/ext"
	"github.com/voxelforge/tick/gametime"
	"github.com/voxelforge/tick/middleware"
	"github.com/voxelforge/tick/step"
)

// Dispatcher is the per-tick entry point. The host calls Step once per
// server tick; the Dispatcher advances gametime, fires due delayed
// jobs, then invokes every globalstep, in that fixed order.
//
// The order is deliberate: a globalstep reading gametime sees the
// current step's advanced value, and a zero-delay job fires before the
// same step's globalsteps run.
//
// Step must be called from a single goroutine. Everything else on the
// Dispatcher and its components is safe from any goroutine.
type Dispatcher struct {
	logger *slog.Logger
	hooks  *ext.Registry

	clock *gametime.Accumulator
	jobs  *after.Scheduler
	steps *step.Registry

	// Setup-time collection, consumed by New.
	initialGametime float64
	extensions      []ext.Extension
	mws             []middleware.Middleware
}

// New creates a Dispatcher with the given options.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}

	d.hooks = ext.NewRegistry(d.logger)
	for _, e := range d.extensions {
		d.hooks.Register(e)
	}

	// Recovery is always the outermost middleware: user middleware runs
	// inside it, and a panicking callback can never abort a step.
	chain := middleware.Chain(append(
		[]middleware.Middleware{middleware.Recover(d.logger)},
		d.mws...,
	)...)

	d.clock = gametime.NewAccumulator(d.initialGametime)
	d.jobs = after.NewScheduler(d.logger, d.hooks, chain)
	d.steps = step.NewRegistry(d.logger, chain)
	return d
}

// Step runs one server step with the given elapsed delta time in
// seconds. dtime is trusted non-negative input from the host loop.
func (d *Dispatcher) Step(dtime float64) {
	start := time.Now()

	d.clock.Advance(dtime)
	d.jobs.AdvanceAndFire(dtime)
	d.steps.InvokeAll(dtime)

	d.hooks.EmitStepCompleted(dtime, time.Since(start))
}

// RegisterStep registers a globalstep callback invoked every step with
// dtime. name is used for diagnostics only.
func (d *Dispatcher) RegisterStep(name string, fn step.Callback) *step.Registration {
	return d.steps.Register(name, fn)
}

// After schedules fn to run after at least delay seconds of accumulated
// step time, with the given captured arguments. The returned handle
// supports cancellation.
func (d *Dispatcher) After(delay float64, fn after.Callback, args ...after.Arg) after.Handle {
	return d.jobs.Schedule(delay, fn, args...)
}

// Gametime returns the current in-world time in seconds.
func (d *Dispatcher) Gametime() float64 { return d.clock.Read() }

// Accumulator returns the gametime accumulator, for persistence wiring.
func (d *Dispatcher) Accumulator() *gametime.Accumulator { return d.clock }

// Jobs returns the delayed job scheduler.
func (d *Dispatcher) Jobs() *after.Scheduler { return d.jobs }

// Steps returns the globalstep registry.
func (d *Dispatcher) Steps() *step.Registry { return d.steps }

// Hooks returns the extension registry.
func (d *Dispatcher) Hooks() *ext.Registry { return d.hooks }

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }
