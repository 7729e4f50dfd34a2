// Package repository stores console preferences as expiring key/value pairs.
package repository

import (
	"context"
	"time"
)

// DefaultTTL is how long a preference is kept after it was last written.
const DefaultTTL = 30 * 24 * time.Hour

// Store is a string key/value store whose entries expire a fixed TTL after
// they were written.
type Store interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
