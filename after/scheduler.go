package after

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/voxelforge/tick/ext"
	"github.com/voxelforge/tick/id"
	"github.com/voxelforge/tick/middleware"
)

// dueEntry records a job selected for firing during the scan phase.
// The slot is re-checked for cancellation right before invocation.
type dueEntry struct {
	index uint32
	gen   uint32
	jobID id.JobID
}

// Scheduler owns the live set of delayed jobs. Schedule and Cancel are
// safe from any goroutine; AdvanceAndFire must be called only by the
// dispatcher, once per step, on the single step-processing goroutine.
//
// Jobs live in a slot arena. A Handle is an index plus a generation
// counter into that arena, so cancellation is O(1) and a handle left
// over from a fired job can never touch the slot's next occupant.
type Scheduler struct {
	logger    *slog.Logger
	hooks     *ext.Registry
	chain     middleware.Middleware
	delayWarn *rate.Limiter

	mu       sync.Mutex
	slots    []slot
	free     []uint32
	live     []uint32
	incoming []uint32

	// due is scratch for the fire phase, reused across steps. Only the
	// dispatcher goroutine touches it.
	due []dueEntry
}

// NewScheduler creates a Scheduler. hooks may be nil; chain may be nil,
// in which case callbacks run under panic recovery only.
func NewScheduler(logger *slog.Logger, hooks *ext.Registry, chain middleware.Middleware) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if hooks == nil {
		hooks = ext.NewRegistry(logger)
	}
	if chain == nil {
		chain = middleware.Recover(logger)
	}
	return &Scheduler{
		logger:    logger,
		hooks:     hooks,
		chain:     chain,
		delayWarn: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Schedule creates a one-shot job that fires after at least delay
// seconds of accumulated step time. A delay of zero or below means "due
// on the next pass"; jobs never fire inside the pass that scheduled
// them, so a zero-delay job scheduled from a firing callback runs on
// the next step rather than busy-looping the current one.
//
// Non-finite delays (NaN, ±Inf) are normalized to zero rather than
// rejected, keeping the scheduling surface total on bad input.
func (s *Scheduler) Schedule(delay float64, fn Callback, args ...Arg) Handle {
	if math.IsNaN(delay) || math.IsInf(delay, 0) {
		if s.delayWarn.Allow() {
			s.logger.Warn("non-finite job delay, treating as due immediately",
				slog.Float64("delay", delay),
			)
		}
		delay = 0
	}

	jobID := id.NewJobID()

	s.mu.Lock()
	idx := s.allocLocked()
	sl := &s.slots[idx]
	sl.occupied = true
	sl.cancelled = false
	sl.remaining = delay
	sl.fn = fn
	sl.args = args
	sl.jobID = jobID
	gen := sl.gen
	s.incoming = append(s.incoming, idx)
	s.mu.Unlock()

	s.hooks.EmitJobScheduled(jobID, delay)

	return Handle{s: s, index: idx, gen: gen, jobID: jobID}
}

// AdvanceAndFire subtracts dtime from every live, non-cancelled job and
// fires the ones whose remaining delay dropped to zero or below. Due
// jobs fire in no specified relative order. Fired and cancelled jobs
// are removed, keeping the live set compact; cost is O(live jobs) per
// step regardless of how many are due.
func (s *Scheduler) AdvanceAndFire(dtime float64) {
	s.mu.Lock()

	// Jobs scheduled since the last pass join the live set now. Anything
	// scheduled during this pass (from a firing callback or another
	// goroutine) waits for the next one.
	s.live = append(s.live, s.incoming...)
	s.incoming = s.incoming[:0]

	s.due = s.due[:0]
	keep := s.live[:0]
	for _, idx := range s.live {
		sl := &s.slots[idx]
		if sl.cancelled {
			s.freeLocked(idx)
			continue
		}
		sl.remaining -= dtime
		if sl.remaining <= 0 {
			s.due = append(s.due, dueEntry{index: idx, gen: sl.gen, jobID: sl.jobID})
			continue
		}
		keep = append(keep, idx)
	}
	s.live = keep
	s.mu.Unlock()

	for _, d := range s.due {
		s.fire(d)
	}
}

// fire invokes a single due job, honoring a cancellation that landed
// between the scan and this call.
func (s *Scheduler) fire(d dueEntry) {
	s.mu.Lock()
	sl := &s.slots[d.index]
	if sl.gen != d.gen {
		// Already released; nothing to do.
		s.mu.Unlock()
		return
	}
	if sl.cancelled {
		s.freeLocked(d.index)
		s.mu.Unlock()
		return
	}
	fn, args := sl.fn, sl.args
	// Release the slot before invoking: from here on the job counts as
	// fired, and a late Cancel on its handle is a no-op.
	s.freeLocked(d.index)
	s.mu.Unlock()

	start := time.Now()
	call := middleware.Call{Kind: middleware.KindJob, Name: d.jobID.String()}
	_ = s.chain(call, func() error {
		if fn != nil {
			fn(args)
		}
		return nil
	})
	s.hooks.EmitJobFired(d.jobID, time.Since(start))
}

// cancel implements Handle.Cancel.
func (s *Scheduler) cancel(h Handle) {
	s.mu.Lock()
	if int(h.index) >= len(s.slots) {
		s.mu.Unlock()
		return
	}
	sl := &s.slots[h.index]
	if sl.gen != h.gen || sl.cancelled {
		s.mu.Unlock()
		return
	}
	sl.cancelled = true
	s.mu.Unlock()

	s.hooks.EmitJobCancelled(h.jobID)
}

// Len returns the number of jobs currently held by the scheduler,
// including ones scheduled since the last pass.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live) + len(s.incoming)
}

// allocLocked returns a free slot index, growing the arena if needed.
func (s *Scheduler) allocLocked() uint32 {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		return idx
	}
	s.slots = append(s.slots, slot{})
	return uint32(len(s.slots) - 1)
}

// freeLocked releases a slot and bumps its generation so stale handles
// cannot reach the next occupant.
func (s *Scheduler) freeLocked(idx uint32) {
	sl := &s.slots[idx]
	sl.gen++
	sl.occupied = false
	sl.cancelled = false
	sl.fn = nil
	sl.args = nil
	sl.jobID = id.Nil
	s.free = append(s.free, idx)
}
