// Package loop drives a tick.Dispatcher at a fixed step rate. It owns
// the wall-clock side of the system: pacing, delta-time measurement and
// clamping, periodic gametime persistence, and cron ticking. The
// dispatcher itself stays free of wall-clock concerns and can be
// stepped directly in tests.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/voxelforge/tick"
	"github.com/voxelforge/tick/clock"
	"github.com/voxelforge/tick/cron"
	"github.com/voxelforge/tick/gametime"
)

// Option configures a Loop.
type Option func(*Loop)

// WithConfig sets the loop configuration. Defaults to tick.DefaultConfig().
func WithConfig(cfg tick.Config) Option {
	return func(l *Loop) { l.cfg = cfg }
}

// WithClock sets the time source. Defaults to the real clock.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) { l.clk = c }
}

// WithStore sets the gametime persistence backend. Without a store the
// loop runs fine but gametime is lost on shutdown.
func WithStore(s gametime.Store) Option {
	return func(l *Loop) { l.store = s }
}

// WithCron attaches a cron scheduler, ticked once per step with the
// current wall-clock time.
func WithCron(c *cron.Scheduler) Option {
	return func(l *Loop) { l.crons = c }
}

// WithLogger sets the loop's logger. Defaults to the dispatcher's.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// Loop runs the host step loop for a Dispatcher.
type Loop struct {
	d      *tick.Dispatcher
	clk    clock.Clock
	store  gametime.Store
	crons  *cron.Scheduler
	logger *slog.Logger
	cfg    tick.Config

	wg sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// New creates a Loop around the given dispatcher.
func New(d *tick.Dispatcher, opts ...Option) *Loop {
	l := &Loop{
		d:      d,
		clk:    clock.NewReal(),
		logger: d.Logger(),
		cfg:    tick.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadInitialGametime reads the persisted gametime from a store,
// returning zero for a fresh world. Call it before tick.New so the
// value can be handed to tick.WithInitialGametime.
func LoadInitialGametime(ctx context.Context, s gametime.Store) (float64, error) {
	if s == nil {
		return 0, tick.ErrNoStore
	}
	v, ok, err := s.LoadGametime(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return v, nil
}

// Start verifies the store and launches the step goroutine. It returns
// immediately. A stopped loop can be started again.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return tick.ErrLoopRunning
	}

	if l.store != nil {
		if err := l.store.Ping(ctx); err != nil {
			return err
		}
	}

	// Fresh channel per run: the previous Stop closed the old one.
	l.stopCh = make(chan struct{})
	l.running = true
	l.wg.Add(1)
	go l.run(l.stopCh)

	l.logger.Info("step loop started",
		slog.Duration("step_interval", l.cfg.StepInterval),
		slog.Float64("max_step_delta", l.cfg.MaxStepDelta),
	)
	return nil
}

// Stop signals the loop to stop, waits for the step goroutine to finish
// (or the context to expire), saves gametime once more, and notifies
// Shutdown extensions. The store itself is not closed; the caller owns
// its lifecycle.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return tick.ErrLoopNotRunning
	}
	l.running = false
	stopCh := l.stopCh
	l.mu.Unlock()

	close(stopCh)

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		l.logger.Warn("step loop shutdown timed out")
	}

	l.saveGametime(ctx)
	l.d.Hooks().EmitShutdown()

	l.logger.Info("step loop stopped",
		slog.Float64("gametime", l.d.Gametime()),
	)
	return nil
}

// run is the step goroutine. stop belongs to this run; a restart gets
// its own channel.
func (l *Loop) run(stop <-chan struct{}) {
	defer l.wg.Done()

	lastMicros := l.clk.Micros()
	var nextSave time.Time
	if l.cfg.SaveInterval > 0 {
		nextSave = l.clk.Now().Add(l.cfg.SaveInterval)
	}

	for {
		select {
		case <-stop:
			return
		case <-l.clk.After(l.cfg.StepInterval):
		}

		nowMicros := l.clk.Micros()
		dtime := float64(nowMicros-lastMicros) / 1e6
		lastMicros = nowMicros

		if dtime < 0 {
			dtime = 0
		}
		if l.cfg.MaxStepDelta > 0 && dtime > l.cfg.MaxStepDelta {
			l.logger.Debug("step delta clamped",
				slog.Float64("dtime", dtime),
				slog.Float64("max", l.cfg.MaxStepDelta),
			)
			dtime = l.cfg.MaxStepDelta
		}

		if l.crons != nil {
			l.crons.Tick(l.clk.Now())
		}

		l.d.Step(dtime)

		if l.cfg.SaveInterval > 0 && !l.clk.Now().Before(nextSave) {
			l.saveGametime(context.Background())
			nextSave = l.clk.Now().Add(l.cfg.SaveInterval)
		}
	}
}

func (l *Loop) saveGametime(ctx context.Context) {
	if l.store == nil {
		return
	}
	if err := l.store.SaveGametime(ctx, l.d.Gametime()); err != nil {
		l.logger.Error("gametime save error",
			slog.String("error", err.Error()),
		)
	}
}
