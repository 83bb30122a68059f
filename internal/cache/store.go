package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

// Store implements read-through caching over a Cache. It is the handle injected into services;
// there is no package-level cache.
//
// Per key the states are empty, populated and invalidated. A read on empty loads from the source
// of truth and stores the result with a TTL; a read on populated returns the stored bytes;
// Invalidate drops whole families synchronously. Cache failures are logged and read as misses.
type Store struct {
	c       Cache
	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	group   singleflight.Group
	// epoch advances on every invalidation, before any key is cleared. A fill computed from
	// inputs read before an invalidation is not kept, and loads started after it never join a
	// flight started before it.
	epoch atomic.Uint64
}

func NewStore(c Cache, log *logger.Logger, metrics *observability.Metrics) *Store {
	if c == nil {
		c = Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		c:       c,
		log:     log.With("service", "CacheStore"),
		metrics: metrics,
		tracer:  otel.Tracer("postangelo/cache"),
	}
}

// Backend exposes the underlying cache, mostly for tests.
func (s *Store) Backend() Cache { return s.c }

// Remember returns the cached bytes for key, or calls load, stores its result for ttl and
// returns it. Concurrent misses for the same key share one load.
func (s *Store) Remember(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	return s.RememberSince(ctx, s.Epoch(), key, ttl, load)
}

// Epoch returns the current invalidation epoch. Callers that read inputs for a load before
// calling RememberSince capture it first.
func (s *Store) Epoch() uint64 { return s.epoch.Load() }

// RememberSince is Remember for a load whose inputs were read at epoch. If any invalidation ran
// since then the result is returned but not stored.
func (s *Store) RememberSince(ctx context.Context, epoch uint64, key string, ttl time.Duration, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "cache.remember", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, ok, err := s.c.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.ObserveCache("get", "error")
		s.log.Warn("cache get failed; treating as miss", "key", key, "error", err)
	case ok:
		s.metrics.ObserveCache("get", "hit")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	default:
		s.metrics.ObserveCache("get", "miss")
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	flight := key + "@" + strconv.FormatUint(epoch, 10)
	v, err, _ := s.group.Do(flight, func() (any, error) {
		// followers share this load, so one caller going away must not fail the others
		loadCtx := context.WithoutCancel(ctx)
		data, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.fill(loadCtx, epoch, key, data, ttl)
		return data, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return v.([]byte), nil
}

// fill stores data computed from inputs read at epoch. Invalidate bumps the epoch before it
// clears keys, so a fill that lands after a clear sees the new epoch on the second check and
// removes its own write. The removal is by prefix; a longer key caught by it is only recomputed.
func (s *Store) fill(ctx context.Context, epoch uint64, key string, data []byte, ttl time.Duration) {
	if s.epoch.Load() != epoch {
		s.log.Debug("skipping cache fill after concurrent invalidation", "key", key)
		return
	}
	if err := s.c.Set(ctx, key, data, ttl); err != nil {
		s.metrics.ObserveCache("set", "error")
		s.log.Warn("cache set failed", "key", key, "error", err)
		return
	}
	s.metrics.ObserveCache("set", "ok")
	if s.epoch.Load() != epoch {
		if err := s.c.InvalidatePattern(ctx, key); err != nil {
			s.log.Warn("cache cleanup after concurrent invalidation failed", "key", key, "error", err)
		}
	}
}

// Invalidate removes every key under each prefix. It runs synchronously so a write that calls it
// before returning leaves no stale entry behind; failures are logged, never returned, because the
// write they follow has already committed.
func (s *Store) Invalidate(ctx context.Context, prefixes ...string) {
	if len(prefixes) == 0 {
		return
	}
	s.epoch.Add(1)
	ctx, span := s.tracer.Start(ctx, "cache.invalidate")
	defer span.End()

	var g errgroup.Group
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		g.Go(func() error {
			s.metrics.IncInvalidation(prefix)
			if err := s.c.InvalidatePattern(ctx, prefix); err != nil {
				s.metrics.ObserveCache("invalidate", "error")
				s.log.Warn("cache invalidation failed", "prefix", prefix, "error", err)
				return nil
			}
			s.metrics.ObserveCache("invalidate", "ok")
			return nil
		})
	}
	_ = g.Wait()
}

// RememberJSON is Remember for values that travel as JSON.
func RememberJSON[T any](ctx context.Context, s *Store, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	epoch := s.Epoch()
	raw, err := s.RememberSince(ctx, epoch, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		// a stored value from an older shape is overwritten with a fresh load
		s.log.Warn("cached value no longer decodes; reloading", "key", key, "error", err)
		v, err := load(ctx)
		if err != nil {
			return zero, err
		}
		if data, err := json.Marshal(v); err == nil {
			s.fill(ctx, epoch, key, data, ttl)
		}
		return v, nil
	}
	return out, nil
}
