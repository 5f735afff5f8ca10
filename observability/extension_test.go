package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/voxelforge/tick/id"
	"github.com/voxelforge/tick/observability"
)

func TestCountersTrackLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetricsExtensionWithRegisterer(reg)

	jobID := id.NewJobID()
	if err := m.OnJobScheduled(jobID, 1.0); err != nil {
		t.Fatalf("OnJobScheduled: %v", err)
	}
	if err := m.OnJobFired(jobID, time.Millisecond); err != nil {
		t.Fatalf("OnJobFired: %v", err)
	}
	if err := m.OnJobCancelled(id.NewJobID()); err != nil {
		t.Fatalf("OnJobCancelled: %v", err)
	}
	if err := m.OnStepCompleted(0.05, time.Millisecond); err != nil {
		t.Fatalf("OnStepCompleted: %v", err)
	}
	if err := m.OnCronFired("nightly", id.NewJobID()); err != nil {
		t.Fatalf("OnCronFired: %v", err)
	}

	checks := []struct {
		c    prometheus.Counter
		want float64
	}{
		{m.JobsScheduled, 1},
		{m.JobsFired, 1},
		{m.JobsCancelled, 1},
		{m.StepsTotal, 1},
		{m.CronsFired, 1},
	}
	for i, chk := range checks {
		if got := testutil.ToFloat64(chk.c); got != chk.want {
			t.Fatalf("counter %d = %v, want %v", i, got, chk.want)
		}
	}
}

func TestIsolatedRegistries(t *testing.T) {
	// Two extensions on separate registries must not collide.
	a := observability.NewMetricsExtensionWithRegisterer(prometheus.NewRegistry())
	b := observability.NewMetricsExtensionWithRegisterer(prometheus.NewRegistry())

	_ = a.OnStepCompleted(0.05, 0)

	if got := testutil.ToFloat64(b.StepsTotal); got != 0 {
		t.Fatalf("second registry counter = %v, want 0", got)
	}
}
