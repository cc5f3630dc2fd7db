package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecspace/internal/db"
)

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	k := s.key(key)
	data, err := s.client.Do(ctx, s.client.B().Get().Key(k).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Key: k, Err: err}
	}
	return data, nil
}

// Put stores value under key. A non-positive ttl stores it without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	k := s.key(key)
	set := s.client.B().Set().Key(k).Value(rueidis.BinaryString(value))

	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = set.Ex(ttl).Build()
	} else {
		cmd = set.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPut, Key: k, Err: err}
	}
	return nil
}

// Delete removes keys in a single DEL.
func (s *Store) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	n, err := s.client.Do(ctx, s.client.B().Del().Key(full...).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return n, nil
}
