// Package cache is the read-through cache used by the public read paths. Values are opaque
// bytes; writers keep it coherent by invalidating whole key families by prefix.
package cache

import (
	"context"
	"time"
)

// Cache is the storage collaborator behind Store. Implementations must treat invalidating an
// absent prefix as success.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// InvalidatePattern removes every key that starts with prefix.
	InvalidatePattern(ctx context.Context, prefix string) error
}

// Noop never stores anything. Every read is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) InvalidatePattern(context.Context, string) error          { return nil }
