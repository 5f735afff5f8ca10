// Package redis implements gametime.Store backed by Redis. The value
// is stored as a stringified float under a single key, so multiple
// worlds can share one Redis by using distinct key prefixes.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/voxelforge/tick/gametime"
)

var _ gametime.Store = (*Store)(nil)

const defaultKeyPrefix = "tick"

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKeyPrefix sets the key prefix. Defaults to "tick".
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// Store implements gametime.Store backed by Redis.
type Store struct {
	client goredis.Cmdable
	logger *slog.Logger
	prefix string
}

// New creates a Redis-backed store. The caller owns the client
// lifecycle; Close is a no-op.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client: client,
		logger: slog.Default(),
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) gametimeKey() string {
	return s.prefix + ":gametime"
}

// LoadGametime reads the persisted gametime; ok is false when the key
// does not exist yet.
func (s *Store) LoadGametime(ctx context.Context) (float64, bool, error) {
	raw, err := s.client.Get(ctx, s.gametimeKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("tick/redis: load gametime: %w", err)
	}

	v, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr != nil {
		return 0, false, fmt.Errorf("tick/redis: parse gametime %q: %w", raw, parseErr)
	}
	return v, true, nil
}

// SaveGametime writes the gametime value.
func (s *Store) SaveGametime(ctx context.Context, value float64) error {
	raw := strconv.FormatFloat(value, 'g', -1, 64)
	if err := s.client.Set(ctx, s.gametimeKey(), raw, 0).Err(); err != nil {
		return fmt.Errorf("tick/redis: save gametime: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("tick/redis: ping: %w", err)
	}
	return nil
}

// Close is a no-op; the caller owns the client.
func (s *Store) Close() error { return nil }
