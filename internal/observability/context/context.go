// Package obscontext carries request correlation identifiers through context.
package obscontext

import (
	"context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	roleKey
	runIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// WithUser records the authenticated principal for log correlation.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = withString(ctx, userIDKey, userID)
	return withString(ctx, roleKey, role)
}

func UserFromContext(ctx context.Context) (userID, role string) {
	return stringFrom(ctx, userIDKey), stringFrom(ctx, roleKey)
}

// WithRunID tags background work such as a warmer pass.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withString(ctx, runIDKey, runID)
}

func RunIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, runIDKey)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
