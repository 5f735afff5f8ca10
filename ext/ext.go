// Package ext defines the extension system for tick.
// Extensions are notified of lifecycle events (job scheduled, fired,
// cancelled, step completed, ...) and can react to them: logging,
// metrics, admin surfaces.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about. Hooks run synchronously inside the
// step, so implementations must be cheap; anything slow belongs on the
// extension's own goroutine.
package ext

import (
	"time"

	"github.com/voxelforge/tick/id"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// JobScheduled is called after a delayed job is accepted by the
// scheduler. delay is the normalized remaining delay in seconds.
type JobScheduled interface {
	OnJobScheduled(jobID id.JobID, delay float64) error
}

// JobFired is called after a due job's callback has returned.
type JobFired interface {
	OnJobFired(jobID id.JobID, elapsed time.Duration) error
}

// JobCancelled is called when a live job is cancelled before firing.
// Cancelling an already-fired job does not emit this event.
type JobCancelled interface {
	OnJobCancelled(jobID id.JobID) error
}

// StepCompleted is called at the end of every dispatcher step.
type StepCompleted interface {
	OnStepCompleted(dtime float64, elapsed time.Duration) error
}

// CronFired is called when a cron entry fires and enqueues its job.
type CronFired interface {
	OnCronFired(entryName string, jobID id.JobID) error
}

// Shutdown is called once when the host loop stops.
type Shutdown interface {
	OnShutdown()
}
