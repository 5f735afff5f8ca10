package ext

import (
	"log/slog"
	"time"

	"github.com/voxelforge/tick/id"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type jobScheduledEntry struct {
	name string
	hook JobScheduled
}

type jobFiredEntry struct {
	name string
	hook JobFired
}

type jobCancelledEntry struct {
	name string
	hook JobCancelled
}

type stepCompletedEntry struct {
	name string
	hook StepCompleted
}

type cronFiredEntry struct {
	name string
	hook CronFired
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
//
// Registration happens during setup, before the step loop starts; the
// Registry takes no locks on the emit paths.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	jobScheduled  []jobScheduledEntry
	jobFired      []jobFiredEntry
	jobCancelled  []jobCancelledEntry
	stepCompleted []stepCompletedEntry
	cronFired     []cronFiredEntry
	shutdown      []Shutdown
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(JobScheduled); ok {
		r.jobScheduled = append(r.jobScheduled, jobScheduledEntry{name, h})
	}
	if h, ok := e.(JobFired); ok {
		r.jobFired = append(r.jobFired, jobFiredEntry{name, h})
	}
	if h, ok := e.(JobCancelled); ok {
		r.jobCancelled = append(r.jobCancelled, jobCancelledEntry{name, h})
	}
	if h, ok := e.(StepCompleted); ok {
		r.stepCompleted = append(r.stepCompleted, stepCompletedEntry{name, h})
	}
	if h, ok := e.(CronFired); ok {
		r.cronFired = append(r.cronFired, cronFiredEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, h)
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitJobScheduled notifies all extensions that implement JobScheduled.
func (r *Registry) EmitJobScheduled(jobID id.JobID, delay float64) {
	for _, e := range r.jobScheduled {
		if err := e.hook.OnJobScheduled(jobID, delay); err != nil {
			r.logHookError("OnJobScheduled", e.name, err)
		}
	}
}

// EmitJobFired notifies all extensions that implement JobFired.
func (r *Registry) EmitJobFired(jobID id.JobID, elapsed time.Duration) {
	for _, e := range r.jobFired {
		if err := e.hook.OnJobFired(jobID, elapsed); err != nil {
			r.logHookError("OnJobFired", e.name, err)
		}
	}
}

// EmitJobCancelled notifies all extensions that implement JobCancelled.
func (r *Registry) EmitJobCancelled(jobID id.JobID) {
	for _, e := range r.jobCancelled {
		if err := e.hook.OnJobCancelled(jobID); err != nil {
			r.logHookError("OnJobCancelled", e.name, err)
		}
	}
}

// EmitStepCompleted notifies all extensions that implement StepCompleted.
func (r *Registry) EmitStepCompleted(dtime float64, elapsed time.Duration) {
	for _, e := range r.stepCompleted {
		if err := e.hook.OnStepCompleted(dtime, elapsed); err != nil {
			r.logHookError("OnStepCompleted", e.name, err)
		}
	}
}

// EmitCronFired notifies all extensions that implement CronFired.
func (r *Registry) EmitCronFired(entryName string, jobID id.JobID) {
	for _, e := range r.cronFired {
		if err := e.hook.OnCronFired(entryName, jobID); err != nil {
			r.logHookError("OnCronFired", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown() {
	for _, h := range r.shutdown {
		h.OnShutdown()
	}
}

func (r *Registry) logHookError(hook, extension string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extension),
		slog.String("error", err.Error()),
	)
}
