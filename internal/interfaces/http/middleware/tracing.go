package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// maxTracedRequestIDLength bounds the request_id span attribute
const maxTracedRequestIDLength = 128

// Tracing starts a server span per request and tags it with the request ID.
// It returns no handlers when tracing is disabled. Install it after RequestID.
func Tracing(cfg config.TelemetryConfig, opts ...otelgin.Option) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, opts...),
		tagSpan,
	}
}

// tagSpan runs the rest of the chain first so the admin identity set by
// the auth middleware is known
func tagSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if id := GetRequestID(c); id != "" {
		if len(id) > maxTracedRequestIDLength {
			id = id[:maxTracedRequestIDLength]
		}
		span.SetAttributes(attribute.String("request_id", id))
	}
	if username := c.GetString(JWTUsernameKey); username != "" {
		span.SetAttributes(attribute.String("admin.username", username))
	}
}
