// Package clock abstracts time progression for components that need
// deterministic tests. The host loop reads wall time and monotonic
// microseconds through a Clock so step pacing can be driven by a fake
// in tests.
package clock

import "time"

// Clock supplies the raw timestamps the step loop consumes.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// Micros returns a monotonic microsecond counter. The origin is
	// arbitrary; only differences are meaningful.
	Micros() int64

	// After returns a channel that delivers one tick after d.
	After(d time.Duration) <-chan time.Time
}

// RealClock delegates to the standard library for production use.
type RealClock struct {
	origin time.Time
}

// NewReal returns a RealClock anchored at the current instant.
func NewReal() *RealClock {
	return &RealClock{origin: time.Now()}
}

// Now returns the current wall-clock time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Micros returns monotonic microseconds since the clock was created.
func (c *RealClock) Micros() int64 {
	return time.Since(c.origin).Microseconds()
}

// After relays to time.After for real scheduling.
func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
