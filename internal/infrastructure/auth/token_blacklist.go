package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/cache"
)

// TokenBlacklist invalidates tokens before they expire
type TokenBlacklist interface {
	// AddToBlacklist adds a token's JTI to the blacklist.
	// ttl should be the remaining time until the token expires.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

const blacklistKeyPrefix = "storefront.token.blacklist."

// CacheTokenBlacklist keeps revoked JTIs in the static cache, so a Redis
// cache shares them between nodes
type CacheTokenBlacklist struct {
	cache cache.Manager
}

// NewCacheTokenBlacklist creates a blacklist over the given cache
func NewCacheTokenBlacklist(m cache.Manager) *CacheTokenBlacklist {
	return &CacheTokenBlacklist{cache: m}
}

// AddToBlacklist adds a token's JTI to the blacklist
func (b *CacheTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	// An already expired token is rejected by validation anyway
	if ttl <= 0 {
		return nil
	}
	if err := b.cache.Set(ctx, blacklistKeyPrefix+jti, true, ttl); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks if a token's JTI is in the blacklist
func (b *CacheTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	ok, err := b.cache.IsSet(ctx, blacklistKeyPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return ok, nil
}

var _ TokenBlacklist = (*CacheTokenBlacklist)(nil)
