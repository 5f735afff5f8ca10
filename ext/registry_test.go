package ext_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/voxelforge/tick/ext"
	"github.com/voxelforge/tick/id"
)

// recordingExt implements every hook and records what it saw.
type recordingExt struct {
	name      string
	scheduled []id.JobID
	fired     []id.JobID
	cancelled []id.JobID
	steps     int
	crons     []string
	shutdowns int
	hookErr   error
}

func (e *recordingExt) Name() string { return e.name }

func (e *recordingExt) OnJobScheduled(jobID id.JobID, _ float64) error {
	e.scheduled = append(e.scheduled, jobID)
	return e.hookErr
}

func (e *recordingExt) OnJobFired(jobID id.JobID, _ time.Duration) error {
	e.fired = append(e.fired, jobID)
	return e.hookErr
}

func (e *recordingExt) OnJobCancelled(jobID id.JobID) error {
	e.cancelled = append(e.cancelled, jobID)
	return e.hookErr
}

func (e *recordingExt) OnStepCompleted(_ float64, _ time.Duration) error {
	e.steps++
	return e.hookErr
}

func (e *recordingExt) OnCronFired(entryName string, _ id.JobID) error {
	e.crons = append(e.crons, entryName)
	return e.hookErr
}

func (e *recordingExt) OnShutdown() { e.shutdowns++ }

// stepOnlyExt implements only StepCompleted.
type stepOnlyExt struct{ steps int }

func (e *stepOnlyExt) Name() string { return "step-only" }
func (e *stepOnlyExt) OnStepCompleted(_ float64, _ time.Duration) error {
	e.steps++
	return nil
}

func TestRegistryDispatchesToImplementedHooks(t *testing.T) {
	r := ext.NewRegistry(slog.Default())

	full := &recordingExt{name: "full"}
	stepOnly := &stepOnlyExt{}
	r.Register(full)
	r.Register(stepOnly)

	jobID := id.NewJobID()
	r.EmitJobScheduled(jobID, 1.5)
	r.EmitJobFired(jobID, time.Millisecond)
	r.EmitJobCancelled(jobID)
	r.EmitStepCompleted(0.05, time.Millisecond)
	r.EmitCronFired("nightly", id.NewJobID())
	r.EmitShutdown()

	if len(full.scheduled) != 1 || len(full.fired) != 1 || len(full.cancelled) != 1 {
		t.Fatalf("full ext missed job events: %+v", full)
	}
	if full.steps != 1 || len(full.crons) != 1 || full.shutdowns != 1 {
		t.Fatalf("full ext missed step/cron/shutdown events: %+v", full)
	}
	if stepOnly.steps != 1 {
		t.Fatalf("step-only ext steps = %d, want 1", stepOnly.steps)
	}
}

func TestHookErrorIsLoggedNotPropagated(t *testing.T) {
	var buf strings.Builder
	r := ext.NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))

	bad := &recordingExt{name: "bad", hookErr: errors.New("hook failure")}
	good := &recordingExt{name: "good"}
	r.Register(bad)
	r.Register(good)

	r.EmitStepCompleted(0.05, 0)

	if good.steps != 1 {
		t.Fatal("error in one hook blocked the next extension")
	}
	if !strings.Contains(buf.String(), "hook failure") {
		t.Fatal("hook error was not logged")
	}
}

func TestExtensionsReturnsRegistrationOrder(t *testing.T) {
	r := ext.NewRegistry(nil)
	a := &recordingExt{name: "a"}
	b := &recordingExt{name: "b"}
	r.Register(a)
	r.Register(b)

	exts := r.Extensions()
	if len(exts) != 2 || exts[0].Name() != "a" || exts[1].Name() != "b" {
		t.Fatalf("unexpected extensions: %v", exts)
	}
}
