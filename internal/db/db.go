// Package db defines the disposable key-value store behind the query
// embedding cache. Losing its contents only costs extra provider calls.
package db

import (
	"context"
	"time"
)

// Store is the cache store facade wired from main.
type Store interface {
	Pinger
	Cache
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache holds binary values under keys relative to the store namespace.
type Cache interface {
	// Get returns ErrKeyNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value; ttl <= 0 keeps it until evicted.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
}
