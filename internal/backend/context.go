package backend

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "backend_request_id"

// WithRequestID attaches the X-Request-ID to send with the next request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request ID attached to ctx, or a new one.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}
