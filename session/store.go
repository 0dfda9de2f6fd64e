package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every transport-level Redis failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNotFound is returned when no cache entry exists for a principal.
var ErrNotFound = errors.New("session not found")

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "sess:"

// Store keeps one snapshot per principal in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore returns a Store writing keys as prefix+principalID.
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  rdb,
		prefix: prefix,
	}
}

func (s *Store) key(principalID string) string {
	return s.prefix + principalID
}

// Save writes s under its principal id, replacing any previous entry and
// resetting the TTL.
func (s *Store) Save(ctx context.Context, snap *Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(snap.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get loads the snapshot for principalID. It performs no writes and does not
// extend the TTL.
func (s *Store) Get(ctx context.Context, principalID string) (*Snapshot, error) {
	if principalID == "" {
		return nil, ErrNotFound
	}
	data, err := s.redis.Get(ctx, s.key(principalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return Decode(data)
}

// Delete removes the entry for principalID. Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, principalID string) error {
	if principalID == "" {
		return nil
	}
	if err := s.redis.Del(ctx, s.key(principalID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Replace rewrites an existing entry, keeping its remaining TTL. It reports
// false when there was no entry to replace.
func (s *Store) Replace(ctx context.Context, snap *Snapshot) (bool, error) {
	data, err := Encode(snap)
	if err != nil {
		return false, err
	}
	ok, err := s.redis.SetArgs(ctx, s.key(snap.ID), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ok == "OK", nil
}

// Ping checks Redis reachability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
