package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for tick metrics.
const meterName = "github.com/voxelforge/tick"

// Metrics returns middleware that records per-callback execution metrics
// using the global OTel MeterProvider. If no MeterProvider is
// configured, noop instruments are used and this middleware becomes a
// pass-through.
//
// Instruments:
//   - tick.callback.duration (Float64Histogram): execution time in
//     seconds, with attributes: kind, name, status ("ok" or "panic")
//   - tick.callback.invocations (Int64Counter): total invocations,
//     with attributes: kind, name, status
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time. On error
	// the OTel API returns noop instruments, so the middleware degrades
	// gracefully.
	duration, dErr := meter.Float64Histogram(
		"tick.callback.duration",
		metric.WithDescription("Duration of callback execution in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr

	invocations, iErr := meter.Int64Counter(
		"tick.callback.invocations",
		metric.WithDescription("Total number of callback invocations"),
		metric.WithUnit("{invocation}"),
	)
	_ = iErr

	return func(c Call, next Handler) error {
		start := time.Now()
		err := next()
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "panic"
		}

		attrs := metric.WithAttributes(
			attribute.String("kind", string(c.Kind)),
			attribute.String("name", c.Name),
			attribute.String("status", status),
		)

		ctx := context.Background()
		duration.Record(ctx, elapsed, attrs)
		invocations.Add(ctx, 1, attrs)

		return err
	}
}
