package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/webcontext"
)

// RequestContext gives every request a fresh per-request cache and exposes
// the request details services read through webcontext
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := cache.WithPerRequest(c.Request.Context(), cache.NewMemoryCache())
		ctx = webcontext.With(ctx, &webcontext.Request{
			Host:           c.Request.Host,
			AcceptLanguage: c.GetHeader("Accept-Language"),
			Query:          c.Request.URL.Query(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
