package cache

import "context"

type perRequestKey struct{}

// WithPerRequest returns a context carrying the per-request cache c
func WithPerRequest(ctx context.Context, c *MemoryCache) context.Context {
	return context.WithValue(ctx, perRequestKey{}, c)
}

// PerRequest returns the cache installed on ctx, or NullCache outside a request
func PerRequest(ctx context.Context) Manager {
	if ctx != nil {
		if c, ok := ctx.Value(perRequestKey{}).(*MemoryCache); ok && c != nil {
			return c
		}
	}
	return NullCache{}
}
