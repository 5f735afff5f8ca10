// Package gametime owns the persistent in-world clock: a single float64
// seconds counter advanced once per step by the dispatcher and readable
// from anywhere.
package gametime

import (
	"math"
	"sync/atomic"
)

// Accumulator holds the gametime value. Advance is called only by the
// dispatcher, once per step; Read is safe from any goroutine. The value
// is stored as float bits in an atomic word so readers never tear and
// the writer takes no lock on the hot path.
type Accumulator struct {
	bits atomic.Uint64
}

// NewAccumulator creates an Accumulator starting at initial, typically
// the value loaded from world storage. Negative initial values are
// clamped to zero.
func NewAccumulator(initial float64) *Accumulator {
	a := &Accumulator{}
	if initial < 0 || math.IsNaN(initial) {
		initial = 0
	}
	a.bits.Store(math.Float64bits(initial))
	return a
}

// Advance adds dtime seconds to the stored value. dtime is trusted
// non-negative input from the host loop.
func (a *Accumulator) Advance(dtime float64) {
	cur := math.Float64frombits(a.bits.Load())
	a.bits.Store(math.Float64bits(cur + dtime))
}

// Read returns the current gametime in seconds.
func (a *Accumulator) Read() float64 {
	return math.Float64frombits(a.bits.Load())
}
