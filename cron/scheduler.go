// Package cron layers wall-clock recurring entries on top of the step
// loop. Entries are registered in code with a cron expression; the host
// loop ticks the scheduler once per step, and a due entry fires by
// enqueueing a zero-delay job on the delayed-job scheduler, so the
// entry body runs inside the next step like any other job.
package cron

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/voxelforge/tick"
	"github.com/voxelforge/tick/after"
	"github.com/voxelforge/tick/ext"
	"github.com/voxelforge/tick/id"
)

// EnqueueFunc is the callback the scheduler uses to enqueue a due
// entry's body as a zero-delay job. This keeps the package decoupled
// from the dispatcher: the host provides the implementation, typically
// wrapping Dispatcher.After.
type EnqueueFunc func(fn after.Callback) after.Handle

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression and returns the schedule.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// Entry is a registered recurring schedule.
type Entry struct {
	ID       id.CronID
	Name     string
	Schedule string

	fn      after.Callback
	sched   cronlib.Schedule
	next    time.Time
	enabled bool
}

// Scheduler holds cron entries and fires the due ones on each tick.
// Registration is safe from any goroutine; Tick is called by the host
// loop, once per step, with the current wall-clock time.
type Scheduler struct {
	logger  *slog.Logger
	hooks   *ext.Registry
	enqueue EnqueueFunc

	mu      sync.Mutex
	entries []*Entry
	byName  map[string]*Entry
}

// NewScheduler creates a Scheduler. hooks may be nil.
func NewScheduler(enqueue EnqueueFunc, hooks *ext.Registry, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if hooks == nil {
		hooks = ext.NewRegistry(logger)
	}
	return &Scheduler{
		logger:  logger,
		hooks:   hooks,
		enqueue: enqueue,
		byName:  make(map[string]*Entry),
	}
}

// Register adds a named entry. The expression is validated here; the
// first run time is computed on the first Tick after registration.
// Names must be unique.
func (s *Scheduler) Register(name, expr string, fn after.Callback) (*Entry, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid schedule %q for %q: %w", expr, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("cron: entry %q: %w", name, tick.ErrDuplicateCron)
	}

	e := &Entry{
		ID:       id.NewCronID(),
		Name:     name,
		Schedule: expr,
		fn:       fn,
		sched:    sched,
		enabled:  true,
	}
	s.entries = append(s.entries, e)
	s.byName[name] = e

	s.logger.Info("cron registered",
		slog.String("name", name),
		slog.String("schedule", expr),
	)
	return e, nil
}

// SetEnabled enables or disables an entry by name. Disabling does not
// forget the schedule; on re-enable the next run is recomputed so the
// entry does not fire for missed wall-clock slots.
func (s *Scheduler) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("cron: entry %q: %w", name, tick.ErrCronNotFound)
	}
	e.enabled = enabled
	if enabled {
		e.next = time.Time{} // recompute on next tick
	}
	return nil
}

// NextRun returns the next scheduled run time for an entry, or zero if
// it has not been ticked yet.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byName[name]
	if !ok {
		return time.Time{}, fmt.Errorf("cron: entry %q: %w", name, tick.ErrCronNotFound)
	}
	return e.next, nil
}

// Tick fires every enabled entry whose run time has arrived. Bodies do
// not run here: each due entry enqueues a zero-delay job, which the
// dispatcher fires inside the next step's job pass.
func (s *Scheduler) Tick(now time.Time) {
	type firing struct {
		name string
		fn   after.Callback
	}

	s.mu.Lock()
	var due []firing
	for _, e := range s.entries {
		if !e.enabled {
			continue
		}
		if e.next.IsZero() {
			e.next = e.sched.Next(now)
			continue
		}
		if e.next.After(now) {
			continue
		}
		due = append(due, firing{name: e.Name, fn: e.fn})
		e.next = e.sched.Next(now)
	}
	s.mu.Unlock()

	for _, f := range due {
		h := s.enqueue(f.fn)
		s.hooks.EmitCronFired(f.name, h.ID())
		s.logger.Info("cron fired",
			slog.String("name", f.name),
			slog.String("job_id", h.ID().String()),
		)
	}
}

// Len returns the number of registered entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
