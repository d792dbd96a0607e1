package memory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeBackend struct {
	objects  map[string][]byte
	getErr   error
	putErr   error
	getCalls int
	putCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: make(map[string][]byte)}
}

func (f *fakeBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *fakeBackend) Put(ctx context.Context, key string, data []byte) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func TestGetMissingUserReturnsDefault(t *testing.T) {
	s := NewStore(newFakeBackend(), "memories/", time.Minute)

	mem, err := s.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.BrandContext != nil {
		t.Errorf("BrandContext = %v, want nil", *mem.BrandContext)
	}
}

func TestSetAndGetBrandContext(t *testing.T) {
	backend := newFakeBackend()
	s := NewStore(backend, "memories/", time.Minute)
	ctx := context.Background()

	if _, err := s.SetBrandContext(ctx, "u1", "progressive outdoors brand"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := backend.objects["memories/u1.json"]; !ok {
		t.Fatalf("object not written under prefixed key, have %v", backend.objects)
	}

	mem, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if mem.BrandContext == nil || *mem.BrandContext != "progressive outdoors brand" {
		t.Errorf("BrandContext = %v", mem.BrandContext)
	}
}

func TestClearKeepsObjectAndOtherFields(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["memories/u1.json"] = []byte(`{"brand_context":"old","preferences":{"theme":"dark"}}`)
	s := NewStore(backend, "memories/", time.Minute)
	ctx := context.Background()

	if _, err := s.ClearBrandContext(ctx, "u1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	data, ok := backend.objects["memories/u1.json"]
	if !ok {
		t.Fatal("clear must not delete the object")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("stored object not JSON: %v", err)
	}
	if string(raw["brand_context"]) != "null" {
		t.Errorf("brand_context = %s, want null", raw["brand_context"])
	}
	var prefs map[string]string
	if err := json.Unmarshal(raw["preferences"], &prefs); err != nil || prefs["theme"] != "dark" {
		t.Errorf("unknown field not preserved: %s", raw["preferences"])
	}
}

func TestUnknownFieldsSurviveWrite(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["memories/u1.json"] = []byte(`{"brand_context":"old","notes":["a","b"]}`)
	s := NewStore(backend, "memories/", time.Minute)

	if _, err := s.SetBrandContext(context.Background(), "u1", "new"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(backend.objects["memories/u1.json"], &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["brand_context"]) != `"new"` {
		t.Errorf("brand_context = %s", raw["brand_context"])
	}
	var notes []string
	if err := json.Unmarshal(raw["notes"], &notes); err != nil || len(notes) != 2 || notes[0] != "a" {
		t.Errorf("notes not preserved: %s", raw["notes"])
	}
}

func TestWritesArePrettyPrinted(t *testing.T) {
	backend := newFakeBackend()
	s := NewStore(backend, "memories/", time.Minute)

	if _, err := s.SetBrandContext(context.Background(), "u1", "v"); err != nil {
		t.Fatal(err)
	}
	data := string(backend.objects["memories/u1.json"])
	if !strings.Contains(data, "\n  \"brand_context\"") {
		t.Errorf("stored object not indented: %q", data)
	}
}

func TestUnconfiguredStoreErrors(t *testing.T) {
	s := NewStore(Unconfigured{}, "memories/", time.Minute)
	ctx := context.Background()

	if _, err := s.Get(ctx, "u1"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Get error = %v, want ErrNotConfigured", err)
	}
	if _, err := s.SetBrandContext(ctx, "u1", "v"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Set error = %v, want ErrNotConfigured", err)
	}
	if _, err := s.ClearBrandContext(ctx, "u1"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Clear error = %v, want ErrNotConfigured", err)
	}
}

func TestBackendFailureServesCachedValue(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["memories/u1.json"] = []byte(`{"brand_context":"cached value"}`)
	s := NewStore(backend, "memories/", time.Minute)
	ctx := context.Background()

	// populate the cache with a successful read
	if _, err := s.Get(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	backend.getErr = errors.New("backend down")
	mem, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.BrandContext == nil || *mem.BrandContext != "cached value" {
		t.Errorf("expected cached value, got %v", mem.BrandContext)
	}
}

func TestBackendFailureWithoutCacheReturnsDefault(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("backend down")
	s := NewStore(backend, "memories/", time.Minute)

	mem, err := s.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.BrandContext != nil {
		t.Errorf("expected default memory, got %v", *mem.BrandContext)
	}
}

func TestCacheExpiresForFailureFallback(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["memories/u1.json"] = []byte(`{"brand_context":"v"}`)
	current := time.Now()
	s := NewStoreWithClock(backend, "memories/", time.Minute, func() time.Time { return current })
	ctx := context.Background()

	s.Get(ctx, "u1")
	backend.getErr = errors.New("down")
	current = current.Add(2 * time.Minute)

	mem, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cached copy is stale; degrade to the default rather than serve it
	if mem.BrandContext != nil {
		t.Errorf("stale cache served: %v", *mem.BrandContext)
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["memories/u1.json"] = []byte(`{"brand_context":"old"}`)
	s := NewStore(backend, "memories/", time.Minute)
	ctx := context.Background()

	s.Get(ctx, "u1")
	if _, err := s.SetBrandContext(ctx, "u1", "new"); err != nil {
		t.Fatal(err)
	}

	// a failing backend right after a write must not resurrect the old
	// cached value
	backend.getErr = errors.New("down")
	mem, _ := s.Get(ctx, "u1")
	if mem.BrandContext != nil && *mem.BrandContext == "old" {
		t.Error("stale pre-write value served from cache")
	}
}

func TestWriteFailureSurfaces(t *testing.T) {
	backend := newFakeBackend()
	backend.putErr = errors.New("access denied")
	s := NewStore(backend, "memories/", time.Minute)

	if _, err := s.SetBrandContext(context.Background(), "u1", "v"); err == nil {
		t.Error("expected write error")
	}
}

func TestPurgeRemovesObject(t *testing.T) {
	backend := newFakeBackend()
	backend.objects["memories/u1.json"] = []byte(`{"brand_context":"v"}`)
	s := NewStore(backend, "memories/", time.Minute)

	if err := s.Purge(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := backend.objects["memories/u1.json"]; ok {
		t.Error("object still present after purge")
	}
}

func TestUserMemoryRoundTrip(t *testing.T) {
	var mem UserMemory
	if err := json.Unmarshal([]byte(`{"brand_context":null,"extra":1}`), &mem); err != nil {
		t.Fatal(err)
	}
	if mem.BrandContext != nil {
		t.Errorf("null brand_context parsed as %v", *mem.BrandContext)
	}

	out, err := json.Marshal(mem)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["brand_context"]) != "null" {
		t.Errorf("brand_context = %s, want null", raw["brand_context"])
	}
	if string(raw["extra"]) != "1" {
		t.Errorf("extra = %s, want 1", raw["extra"])
	}
}
