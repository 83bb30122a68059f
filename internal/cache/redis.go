package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const scanBatch = 500

// Redis stores entries in redis under a namespace prefix. Pattern invalidation walks the
// keyspace with SCAN and removes matches with UNLINK, so it never blocks the server.
type Redis struct {
	rdb       goredis.UniversalClient
	namespace string
}

func NewRedis(rdb goredis.UniversalClient, namespace string) *Redis {
	ns := strings.TrimSpace(namespace)
	if ns != "" && !strings.HasSuffix(ns, ":") {
		ns += ":"
	}
	return &Redis{rdb: rdb, namespace: ns}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.namespace+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) InvalidatePattern(ctx context.Context, prefix string) error {
	match := escapeGlob(r.namespace+prefix) + "*"
	if cc, ok := r.rdb.(*goredis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
			return scanUnlink(ctx, node, match)
		})
	}
	return scanUnlink(ctx, r.rdb, match)
}

func scanUnlink(ctx context.Context, c goredis.Cmdable, match string) error {
	var cursor uint64
	for {
		keys, next, err := c.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", match, err)
		}
		if len(keys) > 0 {
			if err := c.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis unlink: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// escapeGlob quotes the characters SCAN MATCH treats specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
