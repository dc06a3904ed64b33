package db

import (
	"context"
	"time"
)

// Store is the persistence facade: a flat, process-wide key-value space.
type Store interface {
	Pinger
	KVStore
	Scanner
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Scanner lists keys by glob pattern. Used by admin tooling only.
type Scanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}
