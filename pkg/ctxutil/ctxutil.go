package ctxutil

import (
	"context"
	"strings"
)

type ctxKey string

const (
	operatorKey  ctxKey = "operator"
	requestIDKey ctxKey = "request_id"
)

// WithOperator stores the authenticated operator name in the context.
func WithOperator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operatorKey, name)
}

// OperatorFromCtx extracts the operator name from the context.
// Returns "" and false if the value is missing, blank, or of the wrong type.
func OperatorFromCtx(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(operatorKey).(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
