// Package observability provides a Prometheus metrics extension for the
// dispatcher. Register it with tick.WithExtension to track step rate
// and duration, job scheduling, firing, and cancellation, and cron
// activity; expose the registry over HTTP with promhttp in the host.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/voxelforge/tick/ext"
	"github.com/voxelforge/tick/id"
)

// Compile-time interface checks.
var (
	_ ext.Extension     = (*MetricsExtension)(nil)
	_ ext.StepCompleted = (*MetricsExtension)(nil)
	_ ext.JobScheduled  = (*MetricsExtension)(nil)
	_ ext.JobFired      = (*MetricsExtension)(nil)
	_ ext.JobCancelled  = (*MetricsExtension)(nil)
	_ ext.CronFired     = (*MetricsExtension)(nil)
)

// MetricsExtension records dispatcher lifecycle metrics.
type MetricsExtension struct {
	StepsTotal    prometheus.Counter
	StepDuration  prometheus.Histogram
	StepDelta     prometheus.Histogram
	JobsScheduled prometheus.Counter
	JobsFired     prometheus.Counter
	JobsCancelled prometheus.Counter
	JobDuration   prometheus.Histogram
	CronsFired    prometheus.Counter
}

// NewMetricsExtension creates a MetricsExtension registered on the
// default Prometheus registerer.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsExtensionWithRegisterer creates a MetricsExtension on the
// given registerer. Use a fresh prometheus.NewRegistry() in tests to
// keep metric registration isolated.
func NewMetricsExtensionWithRegisterer(reg prometheus.Registerer) *MetricsExtension {
	factory := promauto.With(reg)
	return &MetricsExtension{
		StepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tick_steps_total",
			Help: "Total number of dispatcher steps executed.",
		}),
		StepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tick_step_duration_seconds",
			Help:    "Wall-clock duration of a full dispatcher step.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		StepDelta: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tick_step_delta_seconds",
			Help:    "dtime fed into each step.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
		JobsScheduled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tick_jobs_scheduled_total",
			Help: "Total number of delayed jobs scheduled.",
		}),
		JobsFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "tick_jobs_fired_total",
			Help: "Total number of delayed jobs fired.",
		}),
		JobsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tick_jobs_cancelled_total",
			Help: "Total number of delayed jobs cancelled before firing.",
		}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tick_job_duration_seconds",
			Help:    "Execution time of fired job callbacks.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		CronsFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "tick_crons_fired_total",
			Help: "Total number of cron entries fired.",
		}),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnStepCompleted implements ext.StepCompleted.
func (m *MetricsExtension) OnStepCompleted(dtime float64, elapsed time.Duration) error {
	m.StepsTotal.Inc()
	m.StepDuration.Observe(elapsed.Seconds())
	m.StepDelta.Observe(dtime)
	return nil
}

// OnJobScheduled implements ext.JobScheduled.
func (m *MetricsExtension) OnJobScheduled(_ id.JobID, _ float64) error {
	m.JobsScheduled.Inc()
	return nil
}

// OnJobFired implements ext.JobFired.
func (m *MetricsExtension) OnJobFired(_ id.JobID, elapsed time.Duration) error {
	m.JobsFired.Inc()
	m.JobDuration.Observe(elapsed.Seconds())
	return nil
}

// OnJobCancelled implements ext.JobCancelled.
func (m *MetricsExtension) OnJobCancelled(_ id.JobID) error {
	m.JobsCancelled.Inc()
	return nil
}

// OnCronFired implements ext.CronFired.
func (m *MetricsExtension) OnCronFired(_ string, _ id.JobID) error {
	m.CronsFired.Inc()
	return nil
}
