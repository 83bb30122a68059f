package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

// invalidation is the pub/sub payload. Origin lets a process ignore its own messages.
type invalidation struct {
	Origin string `json:"origin"`
	Prefix string `json:"prefix"`
}

// Broadcast keeps a process-local cache coherent across replicas: every invalidation is applied
// locally and then published on a redis channel that the other replicas forward to their own
// local cache.
type Broadcast struct {
	local   Cache
	rdb     goredis.UniversalClient
	channel string
	origin  string
	log     *logger.Logger
}

func NewBroadcast(local Cache, rdb goredis.UniversalClient, channel string, log *logger.Logger) *Broadcast {
	ch := strings.TrimSpace(channel)
	if ch == "" {
		ch = "cache-invalidations"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Broadcast{
		local:   local,
		rdb:     rdb,
		channel: ch,
		origin:  uuid.New().String(),
		log:     log.With("service", "CacheBroadcast"),
	}
}

func (b *Broadcast) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.local.Get(ctx, key)
}

func (b *Broadcast) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return b.local.Set(ctx, key, val, ttl)
}

func (b *Broadcast) InvalidatePattern(ctx context.Context, prefix string) error {
	localErr := b.local.InvalidatePattern(ctx, prefix)
	raw, err := json.Marshal(invalidation{Origin: b.origin, Prefix: prefix})
	if err != nil {
		return errors.Join(localErr, err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return errors.Join(localErr, fmt.Errorf("publish invalidation: %w", err))
	}
	return localErr
}

// StartForwarder subscribes to the channel and applies invalidations published by other
// replicas until ctx is done.
func (b *Broadcast) StartForwarder(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg invalidation
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad invalidation payload", "error", err)
					continue
				}
				if msg.Origin == b.origin {
					continue
				}
				if err := b.local.InvalidatePattern(ctx, msg.Prefix); err != nil {
					b.log.Warn("forwarded invalidation failed", "prefix", msg.Prefix, "error", err)
				}
			}
		}
	}()
	return nil
}
