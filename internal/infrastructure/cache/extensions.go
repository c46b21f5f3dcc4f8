package cache

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// GetOrAcquire returns the cached value for key, or calls acquire and caches its result.
// The result is only stored when cacheTime is positive.
func GetOrAcquire[T any](ctx context.Context, m Manager, key string, cacheTime time.Duration, acquire func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	set, err := m.IsSet(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("failed to check cache key %s: %w", key, err)
	}
	if set {
		var cached T
		found, err := m.Get(ctx, key, &cached)
		if err != nil {
			return zero, fmt.Errorf("failed to read cache key %s: %w", key, err)
		}
		if found {
			return cached, nil
		}
	}

	result, err := acquire(ctx)
	if err != nil {
		return zero, err
	}

	if cacheTime > 0 {
		if err := m.Set(ctx, key, result, cacheTime); err != nil {
			return result, fmt.Errorf("failed to cache key %s: %w", key, err)
		}
	}
	return result, nil
}

// GetOrAcquireDefault is GetOrAcquire with DefaultCacheTime
func GetOrAcquireDefault[T any](ctx context.Context, m Manager, key string, acquire func(ctx context.Context) (T, error)) (T, error) {
	return GetOrAcquire(ctx, m, key, DefaultCacheTime, acquire)
}

// RemoveByPatternFromKeys removes the keys matching pattern from m.
// The pattern is a case-insensitive regular expression where dot matches newlines.
func RemoveByPatternFromKeys(ctx context.Context, m Manager, pattern string, keys []string) error {
	re, err := regexp.Compile("(?is)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid cache key pattern %q: %w", pattern, err)
	}

	for _, key := range keys {
		if !re.MatchString(key) {
			continue
		}
		if err := m.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to remove cache key %s: %w", key, err)
		}
	}
	return nil
}
