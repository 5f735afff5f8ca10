// Package after implements the delayed one-shot job scheduler: jobs
// carry a remaining delay in seconds, are decremented once per step by
// the dispatcher, and fire when the delay reaches zero or below.
//
// The live set is scanned in full every step. That keeps the design
// simple and the contract honest: heavy use of delayed jobs degrades
// step time linearly, which is a disclosed tradeoff, not a bug.
package after

import "github.com/voxelforge/tick/id"

// Arg is a single captured callback argument. Argument lists are sparse
// sequences: an element may be a hole, and the tagged representation
// keeps the list length explicit even when trailing elements are absent.
type Arg struct {
	Value   any
	Present bool
}

// Some returns a present argument holding v.
func Some(v any) Arg { return Arg{Value: v, Present: true} }

// None returns an absent argument (a hole in the sparse list).
func None() Arg { return Arg{} }

// Callback is a one-shot job body. It receives the argument list
// captured at schedule time.
type Callback func(args []Arg)

// slot is one arena cell. Slots are reused; gen disambiguates a stale
// handle from the slot's current occupant.
type slot struct {
	gen       uint32
	occupied  bool
	cancelled bool
	remaining float64
	fn        Callback
	args      []Arg
	jobID     id.JobID
}

// Handle is a cancellation token for a scheduled job. It is a weak
// reference: holding one grants the ability to cancel, never ownership
// of scheduling state. The zero Handle is valid and cancels nothing.
type Handle struct {
	s     *Scheduler
	index uint32
	gen   uint32
	jobID id.JobID
}

// ID returns the job's identifier, for diagnostics. Valid even after
// the job has fired.
func (h Handle) ID() id.JobID { return h.jobID }

// Cancel marks the job cancelled. It is idempotent and a no-op if the
// job has already fired; the two outcomes are mutually exclusive and
// decided by whichever happens first. Safe to call from any goroutine,
// including from a callback running in the same step.
func (h Handle) Cancel() {
	if h.s == nil {
		return
	}
	h.s.cancel(h)
}
