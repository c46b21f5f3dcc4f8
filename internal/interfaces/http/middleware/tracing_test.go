package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func TestTracing(t *testing.T) {
	t.Run("disabled adds no handlers", func(t *testing.T) {
		assert.Empty(t, Tracing(config.TelemetryConfig{ServiceName: "storefront"}))
	})

	t.Run("enabled records a span with the request id", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

		cfg := config.TelemetryConfig{Enabled: true, ServiceName: "storefront"}
		mw := append([]gin.HandlerFunc{RequestID()}, Tracing(cfg, otelgin.WithTracerProvider(tp))...)
		router := newOKRouter(mw...)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Attributes(), attribute.String("request_id", "req-42"))
	})
}
