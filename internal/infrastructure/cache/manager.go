// Package cache provides the static and per-request cache managers used across the storefront.
package cache

import (
	"context"
	"errors"
	"time"
)

// Manager is a key/value cache.
// Get decodes the stored value into dest, which must be a non-nil pointer.
type Manager interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, data any, cacheTime time.Duration) error
	IsSet(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
	RemoveByPattern(ctx context.Context, pattern string) error
	Clear(ctx context.Context) error
	Close() error
}

// Locker runs an action while holding a named distributed lock.
// It reports false without running the action when the lock is already held.
type Locker interface {
	PerformActionWithLock(ctx context.Context, resource string, expiration time.Duration, action func(ctx context.Context) error) (bool, error)
}

// Defaults
const (
	// DefaultCacheTime is used by GetOrAcquireDefault and the configuration defaults
	DefaultCacheTime = 60 * time.Minute

	// PerRequestCacheTime means the entry lives as long as the request
	PerRequestCacheTime time.Duration = 0

	// ProtectedKey is never removed by Remove, RemoveByPattern or Clear
	ProtectedKey = "storefront.dataprotectionkeys"
)

var (
	// ErrEmptyConnectionString is returned when Redis is enabled without an address
	ErrEmptyConnectionString = errors.New("redis connection string is empty")

	// ErrInvalidDestination is returned when Get receives a nil or non-pointer dest
	ErrInvalidDestination = errors.New("cache destination must be a non-nil pointer")
)
