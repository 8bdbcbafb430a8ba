package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mapStore 基于内存 map 的测试后端
type mapStore struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	delErr  error
	getHits int
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string]string{}}
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getHits++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *mapStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.data, key)
	return nil
}

func (s *mapStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func TestFetchCachesNonEmptyResult(t *testing.T) {
	store := newMapStore()
	c := NewWithStore(store, "test")
	loads := 0

	load := func(ctx context.Context) ([]string, bool, error) {
		loads++
		items := []string{"a", "b"}
		return items, true, nil
	}

	first, err := Fetch(context.Background(), c, "items", time.Minute, load)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("unexpected first result: %v", first)
	}

	second, err := Fetch(context.Background(), c, "items", time.Minute, load)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("unexpected second result: %v", second)
	}
	if loads != 1 {
		t.Fatalf("expected single load, got %d", loads)
	}
}

func TestFetchDoesNotCacheEmptyResult(t *testing.T) {
	store := newMapStore()
	c := NewWithStore(store, "test")
	loads := 0

	load := func(ctx context.Context) ([]string, bool, error) {
		loads++
		return nil, false, nil
	}

	for i := 0; i < 2; i++ {
		if _, err := Fetch(context.Background(), c, "empty", time.Minute, load); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
	}
	if loads != 2 {
		t.Fatalf("empty result must not be cached, loads=%d", loads)
	}
	if store.len() != 0 {
		t.Fatalf("expected no cached entries, got %d", store.len())
	}
}

func TestFetchFallsThroughOnCacheError(t *testing.T) {
	store := newMapStore()
	store.getErr = errors.New("cache down")
	c := NewWithStore(store, "test")

	value, err := Fetch(context.Background(), c, "key", time.Minute,
		func(ctx context.Context) (string, bool, error) {
			return "from-db", true, nil
		})
	if err != nil {
		t.Fatalf("expected fail-open fetch, got error: %v", err)
	}
	if value != "from-db" {
		t.Fatalf("expected database result, got %q", value)
	}
}

func TestFetchPropagatesLoadError(t *testing.T) {
	c := NewWithStore(newMapStore(), "test")
	wantErr := errors.New("db down")

	_, err := Fetch(context.Background(), c, "key", time.Minute,
		func(ctx context.Context) (string, bool, error) {
			return "", false, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestFetchWorksWithNilCache(t *testing.T) {
	value, err := Fetch(context.Background(), nil, "key", time.Minute,
		func(ctx context.Context) (int, bool, error) {
			return 42, true, nil
		})
	if err != nil {
		t.Fatalf("fetch without cache failed: %v", err)
	}
	if value != 42 {
		t.Fatalf("expected 42, got %d", value)
	}
}

func TestCacheDelSurfacesError(t *testing.T) {
	store := newMapStore()
	store.delErr = errors.New("del refused")
	c := NewWithStore(store, "test")

	if err := c.Del(context.Background(), "key"); err == nil {
		t.Fatal("expected delete error to surface")
	}
}

func TestCacheKeyPrefix(t *testing.T) {
	store := newMapStore()
	c := NewWithStore(store, "lm")

	if err := c.SetJSON(context.Background(), "cart:u1", []string{"x"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := store.data["lm:cart:u1"]; !ok {
		t.Fatalf("expected prefixed key, stored keys: %v", store.data)
	}
}
