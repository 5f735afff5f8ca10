package gametime_test

import (
	"math"
	"sync"
	"testing"

	"github.com/voxelforge/tick/gametime"
)

func TestAdvanceAccumulatesExactly(t *testing.T) {
	a := gametime.NewAccumulator(0)

	deltas := []float64{0.016, 0.05, 0.1, 0, 1.5, 0.033}
	var want float64
	for _, d := range deltas {
		a.Advance(d)
		want += d
	}

	if got := a.Read(); got != want {
		t.Fatalf("Read() = %v, want %v", got, want)
	}
}

func TestInitialValueCarried(t *testing.T) {
	a := gametime.NewAccumulator(1234.5)
	a.Advance(0.1)
	a.Advance(0.1)

	if got, want := a.Read(), 1234.5+0.2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Read() = %v, want %v", got, want)
	}
}

func TestNegativeAndNaNInitialClamped(t *testing.T) {
	if got := gametime.NewAccumulator(-5).Read(); got != 0 {
		t.Fatalf("negative initial: Read() = %v, want 0", got)
	}
	if got := gametime.NewAccumulator(math.NaN()).Read(); got != 0 {
		t.Fatalf("NaN initial: Read() = %v, want 0", got)
	}
}

func TestMonotonicNonDecreasing(t *testing.T) {
	a := gametime.NewAccumulator(0)
	prev := a.Read()
	for i := 0; i < 1000; i++ {
		a.Advance(0.001)
		cur := a.Read()
		if cur < prev {
			t.Fatalf("gametime decreased: %v -> %v", prev, cur)
		}
		prev = cur
	}
}

func TestConcurrentReaders(t *testing.T) {
	a := gametime.NewAccumulator(0)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				v := a.Read()
				if math.IsNaN(v) || v < 0 {
					t.Errorf("torn or invalid read: %v", v)
					return
				}
			}
		}()
	}

	for i := 0; i < 10000; i++ {
		a.Advance(0.0001)
	}
	close(stop)
	wg.Wait()
}
