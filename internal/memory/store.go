package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/poltracker/poltracker/internal/cache"
)

// ErrNotFound is returned by an ObjectStore when no object exists at a key.
var ErrNotFound = errors.New("object not found")

// ErrNotConfigured is returned when no bucket is configured for the
// selected backend. Handlers surface it instead of fabricating state.
var ErrNotConfigured = errors.New("memory store not configured, set a bucket for the selected backend")

// Unconfigured is the backend used when no bucket is set. Every
// operation fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) Put(ctx context.Context, key string, data []byte) error {
	return ErrNotConfigured
}

func (Unconfigured) Delete(ctx context.Context, key string) error {
	return ErrNotConfigured
}

// ObjectStore is the durable backend holding one JSON object per user.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// UserMemory is one user's memory blob. Fields this version does not
// know about are preserved across read-modify-write cycles.
type UserMemory struct {
	BrandContext *string
	extra        map[string]json.RawMessage
}

func (m *UserMemory) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parsing user memory: %w", err)
	}
	if raw, ok := fields["brand_context"]; ok {
		if err := json.Unmarshal(raw, &m.BrandContext); err != nil {
			return fmt.Errorf("parsing brand_context: %w", err)
		}
		delete(fields, "brand_context")
	}
	m.extra = fields
	return nil
}

func (m UserMemory) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(m.extra)+1)
	for k, v := range m.extra {
		fields[k] = v
	}
	raw, err := json.Marshal(m.BrandContext)
	if err != nil {
		return nil, err
	}
	fields["brand_context"] = raw
	return json.Marshal(fields)
}

func defaultMemory() UserMemory {
	return UserMemory{}
}

// Store reads and writes per-user memory. The object store is the sole
// durable record; the in-process cache only bridges transient backend
// failures on the read path and is invalidated on every write.
type Store struct {
	backend ObjectStore
	prefix  string
	cache   *cache.Store[UserMemory]
}

func NewStore(backend ObjectStore, prefix string, ttl time.Duration) *Store {
	return &Store{
		backend: backend,
		prefix:  prefix,
		cache:   cache.New[UserMemory](ttl),
	}
}

// NewStoreWithClock is NewStore with an injected clock for the cache.
func NewStoreWithClock(backend ObjectStore, prefix string, ttl time.Duration, now func() time.Time) *Store {
	return &Store{
		backend: backend,
		prefix:  prefix,
		cache:   cache.NewWithClock[UserMemory](ttl, now),
	}
}

func (s *Store) key(userID string) string {
	return s.prefix + userID + ".json"
}

func (s *Store) load(ctx context.Context, userID string) (UserMemory, error) {
	data, err := s.backend.Get(ctx, s.key(userID))
	if err != nil {
		return UserMemory{}, err
	}
	var mem UserMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		return UserMemory{}, err
	}
	return mem, nil
}

// Get reads a user's memory. The backend is consulted on every call; a
// missing object yields the default memory, and a backend failure falls
// back to a live cached copy when one exists. A store with no bucket
// configured is an error, not an empty memory.
func (s *Store) Get(ctx context.Context, userID string) (UserMemory, error) {
	mem, err := s.load(ctx, userID)
	if err == nil {
		s.cache.Set(userID, mem)
		return mem, nil
	}
	if errors.Is(err, ErrNotFound) {
		return defaultMemory(), nil
	}
	if errors.Is(err, ErrNotConfigured) {
		return UserMemory{}, err
	}
	log.Printf("memory read for %s failed: %v", userID, err)
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}
	return defaultMemory(), nil
}

// update performs a read-modify-write against the backend directly,
// never through the cache, and invalidates the cache on success.
func (s *Store) update(ctx context.Context, userID string, apply func(*UserMemory)) (UserMemory, error) {
	mem, err := s.load(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return UserMemory{}, fmt.Errorf("reading memory for %s: %w", userID, err)
		}
		mem = defaultMemory()
	}

	apply(&mem)

	data, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return UserMemory{}, fmt.Errorf("encoding memory for %s: %w", userID, err)
	}
	if err := s.backend.Put(ctx, s.key(userID), data); err != nil {
		return UserMemory{}, fmt.Errorf("writing memory for %s: %w", userID, err)
	}
	s.cache.Delete(userID)
	return mem, nil
}

// SetBrandContext stores a user's brand context, preserving every other
// field in the blob.
func (s *Store) SetBrandContext(ctx context.Context, userID, value string) (UserMemory, error) {
	return s.update(ctx, userID, func(m *UserMemory) {
		m.BrandContext = &value
	})
}

// ClearBrandContext nulls out the brand context. The object itself is
// kept so other fields survive.
func (s *Store) ClearBrandContext(ctx context.Context, userID string) (UserMemory, error) {
	return s.update(ctx, userID, func(m *UserMemory) {
		m.BrandContext = nil
	})
}

// Purge removes a user's memory object entirely.
func (s *Store) Purge(ctx context.Context, userID string) error {
	if err := s.backend.Delete(ctx, s.key(userID)); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting memory for %s: %w", userID, err)
	}
	s.cache.Delete(userID)
	return nil
}
