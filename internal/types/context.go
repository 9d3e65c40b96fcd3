package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxOwnerID   ContextKey = "ctx_owner_id"

	HeaderRequestID = "X-Request-ID"
	HeaderOwnerID   = "X-Owner-ID"

	// DefaultOwnerID is used by scripts and tests that run outside a request
	DefaultOwnerID = "00000000-0000-0000-0000-000000000000"
)

func GetOwnerID(ctx context.Context) string {
	if ownerID, ok := ctx.Value(CtxOwnerID).(string); ok {
		return ownerID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetOwnerID sets the owning user's id in the context
func SetOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, CtxOwnerID, ownerID)
}

// SetRequestID sets the request id in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// ValidateOwnerContext validates that the owning user is present in the context
func ValidateOwnerContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}
	if GetOwnerID(ctx) == "" {
		return fmt.Errorf("no owner found in context")
	}
	return nil
}
