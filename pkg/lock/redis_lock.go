// Package lock provides Redis-backed advisory locks.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

const (
	defaultLockTTL  = 30 * time.Second
	defaultInterval = 50 * time.Millisecond
)

// ErrNotAcquired is returned when a lock stays held by another owner past the
// wait budget.
var ErrNotAcquired = errors.New("lock not acquired")

// Lock is an exclusive advisory lock.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Store defines the operations used by RedisLock.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock implements Lock using Redis SETNX + TTL.
type RedisLock struct {
	client Store
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(client Store, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Key returns the redis key guarded by the lock.
func (l *RedisLock) Key() string {
	return l.key
}

// Acquire tries once to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.owner = ""
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

// AcquireWithin polls Acquire until it succeeds, wait elapses or ctx ends.
func AcquireWithin(ctx context.Context, l Lock, wait, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultInterval
	}
	deadline := time.Now().Add(wait)
	for {
		ok, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrNotAcquired
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// MultiLock holds a set of RedisLocks taken in sorted key order so two callers
// needing overlapping keys cannot deadlock.
type MultiLock struct {
	locks    []*RedisLock
	held     []*RedisLock
	wait     time.Duration
	interval time.Duration
}

// NewMultiLock builds one RedisLock per distinct key.
func NewMultiLock(client Store, keys []string, ttl, wait time.Duration) (*MultiLock, error) {
	unique := make(map[string]struct{}, len(keys))
	sorted := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, seen := unique[key]; seen {
			continue
		}
		unique[key] = struct{}{}
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	locks := make([]*RedisLock, 0, len(sorted))
	for _, key := range sorted {
		l, err := NewRedisLock(client, key, ttl)
		if err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	return &MultiLock{locks: locks, wait: wait, interval: defaultInterval}, nil
}

// Keys returns the guarded keys in acquisition order.
func (m *MultiLock) Keys() []string {
	keys := make([]string, len(m.locks))
	for i, l := range m.locks {
		keys[i] = l.Key()
	}
	return keys
}

// Acquire takes every lock or none. On failure the locks already taken are
// released before returning.
func (m *MultiLock) Acquire(ctx context.Context) error {
	for _, l := range m.locks {
		if err := AcquireWithin(ctx, l, m.wait, m.interval); err != nil {
			if releaseErr := m.Release(ctx); releaseErr != nil {
				return multierr.Append(fmt.Errorf("acquire %s: %w", l.Key(), err), releaseErr)
			}
			return fmt.Errorf("acquire %s: %w", l.Key(), err)
		}
		m.held = append(m.held, l)
	}
	return nil
}

// Release frees the held locks in reverse order.
func (m *MultiLock) Release(ctx context.Context) error {
	var err error
	for i := len(m.held) - 1; i >= 0; i-- {
		err = multierr.Append(err, m.held[i].Release(ctx))
	}
	m.held = nil
	return err
}
