package cron_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/voxelforge/tick"
	"github.com/voxelforge/tick/after"
	"github.com/voxelforge/tick/cron"
)

// testRig wires a cron scheduler to a real job scheduler so entries
// fire through the normal zero-delay path.
type testRig struct {
	cron *cron.Scheduler
	jobs *after.Scheduler
}

func newRig() *testRig {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	jobs := after.NewScheduler(logger, nil, nil)
	enqueue := func(fn after.Callback) after.Handle {
		return jobs.Schedule(0, fn)
	}
	return &testRig{
		cron: cron.NewScheduler(enqueue, nil, logger),
		jobs: jobs,
	}
}

func TestRegisterValidatesExpression(t *testing.T) {
	rig := newRig()

	if _, err := rig.cron.Register("bad", "not a cron expr", nil); err == nil {
		t.Fatal("expected error for invalid expression")
	}
	if _, err := rig.cron.Register("ok", "@every 1s", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	rig := newRig()

	if _, err := rig.cron.Register("x", "@every 1s", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := rig.cron.Register("x", "@every 2s", nil); !errors.Is(err, tick.ErrDuplicateCron) {
		t.Fatalf("duplicate Register = %v, want ErrDuplicateCron", err)
	}
}

func TestEntryFiresThroughJobPass(t *testing.T) {
	rig := newRig()

	fired := 0
	if _, err := rig.cron.Register("tock", "@every 1s", func([]after.Arg) { fired++ }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	now := time.Unix(1000, 0)

	// First tick only arms the entry.
	rig.cron.Tick(now)
	rig.jobs.AdvanceAndFire(0.05)
	if fired != 0 {
		t.Fatalf("fired = %d after arming tick, want 0", fired)
	}

	// Past the next run time: the entry enqueues a zero-delay job, which
	// fires on the following job pass.
	rig.cron.Tick(now.Add(1100 * time.Millisecond))
	if fired != 0 {
		t.Fatal("entry body ran during Tick, want it deferred to the job pass")
	}
	rig.jobs.AdvanceAndFire(0.05)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestEntryDoesNotDoubleFire(t *testing.T) {
	rig := newRig()

	fired := 0
	if _, err := rig.cron.Register("tock", "@every 10s", func([]after.Arg) { fired++ }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	now := time.Unix(1000, 0)
	rig.cron.Tick(now)

	// Several ticks within the same schedule slot: one firing only.
	for i := 1; i <= 5; i++ {
		rig.cron.Tick(now.Add(10*time.Second + time.Duration(i)*50*time.Millisecond))
		rig.jobs.AdvanceAndFire(0.05)
	}
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestDisabledEntrySkipped(t *testing.T) {
	rig := newRig()

	fired := 0
	if _, err := rig.cron.Register("tock", "@every 1s", func([]after.Arg) { fired++ }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := rig.cron.SetEnabled("tock", false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	now := time.Unix(1000, 0)
	rig.cron.Tick(now)
	rig.cron.Tick(now.Add(5 * time.Second))
	rig.jobs.AdvanceAndFire(0.05)

	if fired != 0 {
		t.Fatalf("disabled entry fired %d times", fired)
	}
}

func TestReenableDoesNotFireMissedSlots(t *testing.T) {
	rig := newRig()

	fired := 0
	if _, err := rig.cron.Register("tock", "@every 1s", func([]after.Arg) { fired++ }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	now := time.Unix(1000, 0)
	rig.cron.Tick(now)

	if err := rig.cron.SetEnabled("tock", false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	// A minute of missed slots while disabled.
	if err := rig.cron.SetEnabled("tock", true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	later := now.Add(time.Minute)
	rig.cron.Tick(later) // re-arms only
	rig.jobs.AdvanceAndFire(0.05)
	if fired != 0 {
		t.Fatalf("fired = %d immediately after re-enable, want 0", fired)
	}

	rig.cron.Tick(later.Add(1100 * time.Millisecond))
	rig.jobs.AdvanceAndFire(0.05)
	if fired != 1 {
		t.Fatalf("fired = %d after re-enable and due slot, want 1", fired)
	}
}

func TestNextRunUnknownEntry(t *testing.T) {
	rig := newRig()
	if _, err := rig.cron.NextRun("ghost"); !errors.Is(err, tick.ErrCronNotFound) {
		t.Fatalf("NextRun = %v, want ErrCronNotFound", err)
	}
}
