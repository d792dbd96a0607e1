package cache

import (
	"sync"
	"time"
)

// entry is a cached value with its storage time.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store is an in-process TTL cache keyed by string. Entries are valid while
// now - storedAt < ttl; expiry is checked on read only, and stale entries
// stay in the map until overwritten. The map is unbounded; the working set
// is a handful of states and bills per process.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a store with the given TTL using the wall clock.
func New[V any](ttl time.Duration) *Store[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock creates a store with an injected clock for deterministic tests.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the live value for key, or false when the key is absent or its
// entry has outlived the TTL.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any previous entry.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{value: value, storedAt: s.now()}
}

// Delete removes the entry for key.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len reports the number of entries, live or stale.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
