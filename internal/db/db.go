package db

import (
	"context"
	"time"
)

// Store is the Redis facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers declare narrow interfaces of their own
type Store interface {
	Pinger
	HashStore
	KVStore
	StreamStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Daemon is the full-text search daemon facade.
type Daemon interface {
	Pinger
	Searcher
	AttributeUpdater
	Close() error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// StreamStore appends entries to streams.
type StreamStore interface {
	// XAdd appends fields to stream and returns the entry id. Fields are written in key order.
	XAdd(ctx context.Context, stream string, fields map[string]string) (string, error)
}

// Searcher runs batches of queries in one round trip.
type Searcher interface {
	// RunQueries returns one outcome per query, in submission order. A non-nil error
	// means the whole batch failed; per-query failures are reported in Outcome.Error.
	RunQueries(ctx context.Context, queries []*Query) ([]Outcome, error)
}

// AttributeUpdater changes integer attributes of indexed documents.
type AttributeUpdater interface {
	// UpdateAttributes sets attr to the mapped value on every listed document id
	// and returns the number of rows updated.
	UpdateAttributes(ctx context.Context, index, attr string, values map[uint64]int64) (int, error)
}
