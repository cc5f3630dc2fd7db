// Package redis implements db.Store on rueidis. It works against Redis and
// Valkey.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecspace/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	readyBackoffStart = 50 * time.Millisecond
	readyBackoffMax   = time.Second
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// Namespace prefixes every key, e.g. "vecspace:".
	Namespace string
	// DialTimeout defaults to the rueidis default when zero.
	DialTimeout time.Duration
}

// Store is a namespaced key-value cache.
type Store struct {
	client    rueidis.Client
	namespace string
}

// NewStore connects to the configured addresses.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, db.ErrNoAddrs
	}

	opt := rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	}
	if cfg.DialTimeout > 0 {
		opt.Dialer.Timeout = cfg.DialTimeout
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return newStore(client, cfg.Namespace), nil
}

func newStore(client rueidis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// HealthCheck satisfies the health use case checker.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.Ping(ctx)
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately, then with doubling backoff, until the
// store answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := readyBackoffStart
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("store not ready after %s: %w", timeout, err)
		case <-timer.C:
		}
		backoff = min(backoff*2, readyBackoffMax)
	}
}

func (s *Store) key(k string) string {
	return s.namespace + k
}
