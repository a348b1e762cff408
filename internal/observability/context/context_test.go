package obscontext

import (
	"context"
	"testing"
)

func TestUserRoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), " 42 ", "supervisor")
	userID, role := UserFromContext(ctx)
	if userID != "42" || role != "supervisor" {
		t.Fatalf("unexpected user %q role %q", userID, role)
	}
}

func TestEmptyValuesAreIgnored(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithRequestID(ctx, "  ")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := RunIDFromContext(nil); got != "" {
		t.Fatalf("expected empty run id, got %q", got)
	}
}
