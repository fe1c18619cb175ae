package utils

import (
	"context"
	"time"
)

const DefaultStoreTimeout = 2 * time.Second

// WithStoreTimeout bounds a single call into the cart storage backend.
func WithStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
