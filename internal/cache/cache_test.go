package cache

import (
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	s := New[string](time.Hour)

	s.Set("key", "value")

	got, ok := s.Get("key")
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if got != "value" {
		t.Errorf("Expected 'value', got '%s'", got)
	}

	_, ok = s.Get("missing")
	if ok {
		t.Error("Expected cache miss for unknown key")
	}
}

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewWithClock[int](10*time.Minute, clock)

	s.Set("articles", 42)

	// Just inside the window
	now = now.Add(10*time.Minute - time.Second)
	if _, ok := s.Get("articles"); !ok {
		t.Error("Expected hit just inside TTL window")
	}

	// Exactly at the boundary is stale
	now = now.Add(time.Second)
	if _, ok := s.Get("articles"); ok {
		t.Error("Expected miss at TTL boundary")
	}
}

func TestStoreOverwriteRefreshesTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewWithClock[string](time.Minute, clock)

	s.Set("k", "old")
	now = now.Add(2 * time.Minute)

	if _, ok := s.Get("k"); ok {
		t.Fatal("Expected stale entry to miss")
	}

	s.Set("k", "new")
	got, ok := s.Get("k")
	if !ok || got != "new" {
		t.Errorf("Expected fresh 'new', got %q ok=%v", got, ok)
	}
}

func TestStoreStaleEntriesAreNotEvicted(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewWithClock[string](time.Minute, clock)

	s.Set("a", "1")
	s.Set("b", "2")
	now = now.Add(time.Hour)

	if _, ok := s.Get("a"); ok {
		t.Error("Expected miss on stale entry")
	}
	// Stale entries stay in the map until overwritten
	if s.Len() != 2 {
		t.Errorf("Expected 2 entries retained, got %d", s.Len())
	}
}

func TestStoreDelete(t *testing.T) {
	s := New[string](time.Hour)
	s.Set("k", "v")
	s.Delete("k")

	if _, ok := s.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d entries", s.Len())
	}
}
