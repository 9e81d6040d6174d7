package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value.(string)
	return true, nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Second); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := NewRedisLock(newMemoryStore(), "", time.Second); err == nil {
		t.Fatalf("expected error without key")
	}
	l, err := NewRedisLock(newMemoryStore(), "k", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", l.ttl)
	}
}

func TestRedisLockAcquireRelease(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	first, _ := NewRedisLock(store, "k", time.Second)
	second, _ := NewRedisLock(store, "k", time.Second)

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, ok=%v err=%v", ok, err)
	}

	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner should be a no-op: %v", err)
	}
	if _, held := store.data["k"]; !held {
		t.Fatalf("non-owner release must not delete the key")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, held := store.data["k"]; held {
		t.Fatalf("expected key to be deleted")
	}
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	l, _ := NewRedisLock(store, "k", time.Second)
	if ok, _ := l.Acquire(ctx); !ok {
		t.Fatalf("expected acquire")
	}

	store.data["k"] = "someone-else"
	if err := l.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if store.data["k"] != "someone-else" {
		t.Fatalf("expected foreign owner to keep the key")
	}
}

func TestAcquireWithinGivesUp(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.data["k"] = "holder"
	l, _ := NewRedisLock(store, "k", time.Second)

	err := AcquireWithin(ctx, l, 20*time.Millisecond, 5*time.Millisecond)
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
}

func TestAcquireWithinWaitsForRelease(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.data["k"] = "holder"
	l, _ := NewRedisLock(store, "k", time.Second)

	go func() {
		time.Sleep(15 * time.Millisecond)
		_ = store.Del(ctx, "k")
	}()

	if err := AcquireWithin(ctx, l, time.Second, 5*time.Millisecond); err != nil {
		t.Fatalf("expected acquire after release, got %v", err)
	}
}

func TestAcquireWithinPropagatesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	l, _ := NewRedisLock(store, "k", time.Second)

	if err := AcquireWithin(context.Background(), l, time.Second, time.Millisecond); err == nil || errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestMultiLockSortsAndDedupes(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	m, err := NewMultiLock(store, []string{"c", "a", "b", "a"}, time.Second, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := m.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("expected sorted unique keys, got %v", keys)
	}

	if err := m.Acquire(ctx); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if len(store.data) != 3 {
		t.Fatalf("expected 3 keys held, got %d", len(store.data))
	}
	if err := m.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected all keys released, got %v", store.data)
	}
}

func TestMultiLockReleasesPartialAcquisition(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.data["b"] = "holder"

	m, err := NewMultiLock(store, []string{"a", "b", "c"}, time.Second, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = m.Acquire(ctx)
	if !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	if _, held := store.data["a"]; held {
		t.Fatalf("expected lock a to be rolled back")
	}
	if _, held := store.data["c"]; held {
		t.Fatalf("lock c should never have been taken")
	}
	if store.data["b"] != "holder" {
		t.Fatalf("foreign holder must be untouched")
	}
}
