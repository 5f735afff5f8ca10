// Package step implements the globalstep registry: long-lived callbacks
// invoked once per server step, in registration order, with the step's
// elapsed delta time.
package step

import (
	"log/slog"
	"sync"

	"github.com/voxelforge/tick/id"
	"github.com/voxelforge/tick/middleware"
)

// Callback is a globalstep body. dtime is the elapsed time in seconds
// since the previous step.
type Callback func(dtime float64)

type entry struct {
	// key is the registration ID rendered once, so removal compares
	// plain strings instead of re-rendering per entry.
	key  string
	name string
	fn   Callback
}

// Registry is the ordered collection of globalstep callbacks. Register
// and Remove are safe from any goroutine; InvokeAll must be called only
// by the dispatcher, once per step.
//
// The entry list is copy-on-write: InvokeAll iterates a snapshot taken
// at the start of the pass, so registrations and removals during a pass
// (including re-entrant ones from a running callback) take effect on
// the next pass and never race the iteration.
type Registry struct {
	logger *slog.Logger
	chain  middleware.Middleware

	mu      sync.Mutex
	entries []entry
}

// NewRegistry creates a Registry. chain may be nil, in which case
// callbacks run under panic recovery only.
func NewRegistry(logger *slog.Logger, chain middleware.Middleware) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if chain == nil {
		chain = middleware.Recover(logger)
	}
	return &Registry{logger: logger, chain: chain}
}

// Registration is a handle to a registered globalstep.
type Registration struct {
	r   *Registry
	id  id.StepID
	key string
}

// ID returns the registration's identifier, for diagnostics.
func (g *Registration) ID() id.StepID { return g.id }

// Remove unregisters the callback. The remaining entries keep their
// relative order. If a pass is in progress the callback may run one
// final time; it will not run on any later pass. Remove is idempotent.
func (g *Registration) Remove() {
	if g == nil || g.r == nil {
		return
	}
	g.r.remove(g.key)
}

// Register appends a globalstep callback. name is used in logs and
// metrics; it does not need to be unique. Invocation order within a
// step is registration order.
func (r *Registry) Register(name string, fn Callback) *Registration {
	stepID := id.NewStepID()
	key := stepID.String()

	r.mu.Lock()
	next := make([]entry, len(r.entries), len(r.entries)+1)
	copy(next, r.entries)
	r.entries = append(next, entry{key: key, name: name, fn: fn})
	r.mu.Unlock()

	return &Registration{r: r, id: stepID, key: key}
}

// InvokeAll calls every registered callback in registration order,
// synchronously, on the caller's goroutine. A panicking callback is
// isolated and does not prevent the remaining callbacks from running.
// Cost is O(registered callbacks).
func (r *Registry) InvokeAll(dtime float64) {
	r.mu.Lock()
	snapshot := r.entries
	r.mu.Unlock()

	for i := range snapshot {
		e := &snapshot[i]
		if e.fn == nil {
			continue
		}
		call := middleware.Call{Kind: middleware.KindStep, Name: e.name}
		_ = r.chain(call, func() error {
			e.fn(dtime)
			return nil
		})
	}
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].key == key {
			next := make([]entry, 0, len(r.entries)-1)
			next = append(next, r.entries[:i]...)
			next = append(next, r.entries[i+1:]...)
			r.entries = next
			return
		}
	}
}
