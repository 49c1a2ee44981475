package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the portal client.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultRedisTTL = 7 * 24 * time.Hour

// RedisStore is a Redis-backed [Store] for deployments that share a portal
// session across worker processes (kiosk gateways, render services). Each
// store instance owns one key; use one subject suffix per end user.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	subject string
	ttl     time.Duration
}

// NewRedisStore creates a [RedisStore] keyed by prefix and subject. ttl
// bounds how long an untouched record survives; zero selects a 7-day
// default.
func NewRedisStore(client redis.UniversalClient, prefix, subject string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "portal:sess"
	}
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{
		redis:   client,
		prefix:  prefix,
		subject: subject,
		ttl:     ttl,
	}
}

func (s *RedisStore) key() string {
	return s.prefix + ":" + s.subject
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Get(ctx context.Context) (Record, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if rec.Empty() {
		return Record{}, nil
	}
	return rec, nil
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Set(ctx context.Context, rec Record) error {
	if rec.Empty() {
		return ErrNoToken
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
