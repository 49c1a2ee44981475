package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoToken is an exported constant or variable used by the portal client.
var ErrNoToken = errors.New("session record requires an access token")

// ErrCorruptRecord is returned when a persisted record cannot be decoded.
// Callers treat it as logged-out, not as a failure.
var ErrCorruptRecord = errors.New("corrupt session record")

// Store is the durable holder for the current session record. Get on an
// empty store returns a zero Record and no error; Clear is idempotent.
type Store interface {
	Get(ctx context.Context) (Record, error)
	Set(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local [Store] guarded by a mutex.
//
// MemoryStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryStore struct {
	mu  sync.RWMutex
	rec Record
	set bool
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Get(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Record{}, nil
	}
	return s.rec, nil
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Set(_ context.Context, rec Record) error {
	if rec.Empty() {
		return ErrNoToken
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.set = true
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = Record{}
	s.set = false
	return nil
}
