package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

const invalidationChannel = "cache-invalidations"

type Clients struct {
	Redis goredis.UniversalClient
	// Cache is the backend behind the read-through store.
	Cache cache.Cache
	// Broadcast is set when invalidations fan out to other replicas.
	Broadcast *cache.Broadcast
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var rdb goredis.UniversalClient
	if cfg.CacheBackend == CacheRedis || cfg.CacheBackend == CacheBroadcast {
		client := goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
		rdb = client
	}

	out := Clients{Redis: rdb}
	switch cfg.CacheBackend {
	case CacheRedis:
		out.Cache = cache.NewRedis(rdb, cfg.CacheNamespace)
	case CacheBroadcast:
		out.Broadcast = cache.NewBroadcast(cache.NewMemory(), rdb, cfg.CacheNamespace+":"+invalidationChannel, log)
		out.Cache = out.Broadcast
	case CacheNone:
		out.Cache = cache.Noop{}
	default:
		out.Cache = cache.NewMemory()
	}
	log.Info("Cache backend ready", "backend", cfg.CacheBackend)
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
