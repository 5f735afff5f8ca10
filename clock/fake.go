package clock

import (
	"sync"
	"time"
)

// FakeClock delivers deterministic timer signals for tests.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	micros  int64
	waiters []chan time.Time
	pending int
}

// NewFake constructs a fake clock anchored at the Unix epoch.
func NewFake() *FakeClock {
	return &FakeClock{now: time.Unix(0, 0)}
}

// Now returns the fake's current notion of wall time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Micros returns the fake monotonic counter.
func (f *FakeClock) Micros() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.micros
}

// After registers a waiter for the next Fire invocation. The duration is
// ignored; tests control delivery explicitly.
func (f *FakeClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	f.mu.Lock()
	if f.pending > 0 {
		f.pending--
		now := f.now
		f.mu.Unlock()
		ch <- now
		return ch
	}
	f.waiters = append(f.waiters, ch)
	f.mu.Unlock()
	return ch
}

// Fire delivers a single timer event to all current waiters. If no
// waiter is registered yet, the event is banked for the next After call.
func (f *FakeClock) Fire() {
	f.mu.Lock()
	if len(f.waiters) == 0 {
		f.pending++
		f.mu.Unlock()
		return
	}
	waiters := append([]chan time.Time(nil), f.waiters...)
	now := f.now
	f.waiters = nil
	f.mu.Unlock()

	for _, ch := range waiters {
		ch <- now
	}
}

// Advance moves wall time and the monotonic counter forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.micros += d.Microseconds()
	f.mu.Unlock()
}
