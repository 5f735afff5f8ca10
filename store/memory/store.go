// Package memory provides a fully in-memory gametime store.
// Safe for concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"sync"

	"github.com/voxelforge/tick"
	"github.com/voxelforge/tick/gametime"
)

var _ gametime.Store = (*Store)(nil)

// Store holds the persisted gametime value in memory.
type Store struct {
	mu     sync.Mutex
	value  float64
	saved  bool
	closed bool
}

// New returns a new empty Store.
func New() *Store {
	return &Store{}
}

// LoadGametime returns the last saved value; ok is false before the
// first save.
func (m *Store) LoadGametime(_ context.Context) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, false, tick.ErrStoreClosed
	}
	return m.value, m.saved, nil
}

// SaveGametime stores the value.
func (m *Store) SaveGametime(_ context.Context, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return tick.ErrStoreClosed
	}
	m.value = value
	m.saved = true
	return nil
}

// Ping succeeds unless the store has been closed.
func (m *Store) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return tick.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed; subsequent operations fail.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
