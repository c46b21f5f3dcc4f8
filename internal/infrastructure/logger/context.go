package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	usernameKey
)

// WithContext attaches l to ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request logger, or a no-op logger outside a request
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// WithRequestID records the request ID on ctx and on the logger it carries
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return enrich(ctx, l, requestIDKey, "request_id", requestID)
}

// WithUsername records the authenticated administrator on ctx and on the
// logger it carries
func WithUsername(ctx context.Context, l *zap.Logger, username string) (context.Context, *zap.Logger) {
	return enrich(ctx, l, usernameKey, "username", username)
}

func enrich(ctx context.Context, l *zap.Logger, key ctxKey, field, value string) (context.Context, *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	l = l.With(zap.String(field, value))
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, l), l
}

// GetRequestID returns the request ID recorded on ctx
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// GetUsername returns the administrator recorded on ctx
func GetUsername(ctx context.Context) string {
	return stringValue(ctx, usernameKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// contextFields returns the request fields recorded on ctx
func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if user := GetUsername(ctx); user != "" {
		fields = append(fields, zap.String("username", user))
	}
	return fields
}
