package gametime

import "context"

// Store is the persistence interface for the gametime value. The host
// loads the initial value before constructing the dispatcher; the loop
// saves periodically and saves again on shutdown. A single backend
// typically also serves other world state; only the gametime operations
// are required here.
type Store interface {
	// LoadGametime returns the persisted gametime. ok is false when no
	// value has been saved yet (fresh world).
	LoadGametime(ctx context.Context) (value float64, ok bool, err error)

	// SaveGametime persists the given gametime value.
	SaveGametime(ctx context.Context, value float64) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
