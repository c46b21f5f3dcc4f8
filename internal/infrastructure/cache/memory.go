package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Ensure MemoryCache implements Manager
var _ Manager = (*MemoryCache)(nil)

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is an in-process Manager.
// It backs the per-request cache and replaces Redis on single-node deployments.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	now      func() time.Time
	isolated bool
}

// MemoryOption configures a MemoryCache
type MemoryOption func(*MemoryCache)

// WithIsolatedValues stores values JSON encoded, the way RedisManager does.
// Callers then never share a cached pointer, so mutating a value returned by
// Get does not change the cache. The static cache uses this; the per-request
// cache does not.
func WithIsolatedValues() MemoryOption {
	return func(m *MemoryCache) { m.isolated = true }
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	m := &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get copies the cached value into dest
func (m *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || e.expired(m.now()) {
		return false, nil
	}
	if raw, ok := e.value.(encodedValue); ok {
		if err := json.Unmarshal(raw, dest); err != nil {
			return false, fmt.Errorf("failed to decode cached value into %T: %w", dest, err)
		}
		return true, nil
	}
	if err := assign(dest, e.value); err != nil {
		return false, err
	}
	return true, nil
}

// encodedValue is the stored form of a value in an isolated cache
type encodedValue []byte

// Set stores data. A cacheTime of zero or less keeps the entry until it is removed.
// Nil data is ignored.
func (m *MemoryCache) Set(_ context.Context, key string, data any, cacheTime time.Duration) error {
	if isNil(data) {
		return nil
	}

	e := memoryEntry{value: data}
	if m.isolated {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
		}
		e.value = encodedValue(raw)
	}
	if cacheTime > 0 {
		e.expiresAt = m.now().Add(cacheTime)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) IsSet(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	return ok && !e.expired(m.now()), nil
}

// Remove deletes key. The protected key is kept.
func (m *MemoryCache) Remove(_ context.Context, key string) error {
	if isProtected(key) {
		return nil
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// RemoveByPattern removes every key matching the regular expression pattern,
// except the protected key
func (m *MemoryCache) RemoveByPattern(ctx context.Context, pattern string) error {
	return RemoveByPatternFromKeys(ctx, m, pattern, m.Keys())
}

// Clear removes everything except the protected key
func (m *MemoryCache) Clear(context.Context) error {
	m.mu.Lock()
	for k := range m.entries {
		if !isProtected(k) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error {
	return nil
}

// Keys returns the live keys in sorted order
func (m *MemoryCache) Keys() []string {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k, e := range m.entries {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
