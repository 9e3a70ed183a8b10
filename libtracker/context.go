package libtracker

import (
	"context"
	"fmt"
	"math/rand/v2"
)

type contextKey string

var ContextKeyRequestID = contextKey("request_id")

// WithNewRequestID stamps a fresh random request ID into ctx.
// Call this at the top of any CLI command or timer-callback entry-point so
// tracked activity stays correlated to the intent that scheduled it.
func WithNewRequestID(ctx context.Context) context.Context {
	id := fmt.Sprintf("cli-%016x", rand.Uint64())
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// CopyTrackingValues carries the request ID from src into dst. Use when a
// scheduled callback runs on a fresh context.
func CopyTrackingValues(src context.Context, dst context.Context) context.Context {
	return context.WithValue(dst, ContextKeyRequestID, src.Value(ContextKeyRequestID))
}
