package scheduler

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/infrastructure/cache"
)

// ClearCacheTask empties the static cache
type ClearCacheTask struct {
	cache    cache.Manager
	interval time.Duration
}

// NewClearCacheTask creates the task
func NewClearCacheTask(m cache.Manager, interval time.Duration) *ClearCacheTask {
	return &ClearCacheTask{cache: m, interval: interval}
}

func (t *ClearCacheTask) Name() string { return "clear-cache" }

func (t *ClearCacheTask) Interval() time.Duration { return t.interval }

// Execute clears the cache
func (t *ClearCacheTask) Execute(ctx context.Context) error {
	return t.cache.Clear(ctx)
}
