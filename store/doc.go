// Package store groups the persistence backends for world state.
// Each backend implements gametime.Store:
//
//   - store/memory: in-process, for tests and development
//   - store/redis: Redis string key, for ephemeral or shared deployments
//   - store/bun: PostgreSQL via the Bun ORM, single-row world-state table
//
// The host owns the store lifecycle: it loads the initial gametime
// before constructing the dispatcher, and the loop saves on an interval
// and once more on shutdown.
package store
