// Package requestid carries the per-request correlation id through
// context so outbound provider calls and log lines can echo it.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

const Header = "X-Request-ID"

func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id, or "" when none was attached.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// New generates a fresh request id.
func New() string {
	return uuid.NewString()
}
