package observability

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestIDKey struct{}

// NewRequestID mints a random UUID for a request that arrived without one.
func NewRequestID() string {
	return uuid.NewString()
}

// ResolveRequestID returns the caller's ID in canonical form when it parses
// as a UUID, and a fresh one otherwise.
func ResolveRequestID(incoming string) string {
	id, err := uuid.Parse(incoming)
	if err != nil {
		return NewRequestID()
	}
	return id.String()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDField is the request_id log field for ctx.
func RequestIDField(ctx context.Context) zap.Field {
	return zap.String("request_id", RequestIDFromContext(ctx))
}
