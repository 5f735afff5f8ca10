package tick

import "time"

// Config holds host-loop configuration for driving a Dispatcher.
type Config struct {
	// StepInterval is the target wall-clock duration of one server step.
	StepInterval time.Duration

	// MaxStepDelta caps the dtime (in seconds) fed into a single step.
	// A long stall (debugger, GC pause, suspend) is clamped so that one
	// step never advances the simulation by an arbitrary amount.
	MaxStepDelta float64

	// SaveInterval is how often the loop persists gametime to the store.
	// Zero disables periodic saves; gametime is still saved on Stop.
	SaveInterval time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults: 20 steps per
// second, dtime clamped at half a second, gametime saved every 10s.
func DefaultConfig() Config {
	return Config{
		StepInterval:    50 * time.Millisecond,
		MaxStepDelta:    0.5,
		SaveInterval:    10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
