// Package bunstore implements gametime.Store on PostgreSQL via the Bun
// ORM. World state lives in a single-row table keyed by world name, so
// one database can hold several worlds.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/voxelforge/tick/gametime"
)

var _ gametime.Store = (*Store)(nil)

const defaultWorld = "default"

// worldStateModel is the persisted world-state row.
type worldStateModel struct {
	bun.BaseModel `bun:"table:tick_world_state"`

	World     string    `bun:"world,pk"`
	Gametime  float64   `bun:"gametime,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithWorld sets the world name the store reads and writes.
// Defaults to "default".
func WithWorld(world string) Option {
	return func(s *Store) { s.world = world }
}

// Store is a Bun implementation of gametime.Store using the PostgreSQL
// dialect. The caller owns the *bun.DB lifecycle; Store never closes it.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
	world  string
}

// New creates a new Bun store.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.Default(),
		world:  defaultWorld,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying *bun.DB for advanced usage.
func (s *Store) DB() *bun.DB { return s.db }

// Migrate creates the world-state table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tick_world_state (
			world TEXT PRIMARY KEY,
			gametime DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("tick/bun: create world state table: %w", err)
	}
	return nil
}

// LoadGametime reads the persisted gametime for the configured world;
// ok is false when the world has no row yet.
func (s *Store) LoadGametime(ctx context.Context) (float64, bool, error) {
	model := new(worldStateModel)
	err := s.db.NewSelect().
		Model(model).
		Where("world = ?", s.world).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("tick/bun: load gametime: %w", err)
	}
	return model.Gametime, true, nil
}

// SaveGametime upserts the gametime value for the configured world.
func (s *Store) SaveGametime(ctx context.Context, value float64) error {
	model := &worldStateModel{
		World:     s.world,
		Gametime:  value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (world) DO UPDATE").
		Set("gametime = EXCLUDED.gametime").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tick/bun: save gametime: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("tick/bun: ping: %w", err)
	}
	return nil
}

// Close is a no-op; the caller owns the *bun.DB.
func (s *Store) Close() error { return nil }
