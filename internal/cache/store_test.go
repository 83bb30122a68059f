package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(val string) (func(context.Context) ([]byte, error), *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) ([]byte, error) {
		n.Add(1)
		return []byte(val), nil
	}, &n
}

func TestRememberPopulatesThenHits(t *testing.T) {
	s := NewStore(NewMemory(), nil, nil)
	ctx := context.Background()
	load, calls := counter("v1")

	for i := 0; i < 3; i++ {
		got, err := s.Remember(ctx, "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "v1", string(got))
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidateForcesMiss(t *testing.T) {
	s := NewStore(NewMemory(), nil, nil)
	ctx := context.Background()
	owner := "o1"
	key := "entries:" + owner + ":project:featured"

	value := "before"
	load := func(context.Context) ([]byte, error) { return []byte(value), nil }
	got, err := s.Remember(ctx, key, time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "before", string(got))

	value = "after"
	s.Invalidate(ctx, "entries:"+owner+":project:")

	got, err = s.Remember(ctx, key, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "after", string(got), "the read after an invalidation never serves the pre-write value")
}

func TestLoadErrorsAreNotCached(t *testing.T) {
	s := NewStore(NewMemory(), nil, nil)
	ctx := context.Background()
	boom := errors.New("db down")
	_, err := s.Remember(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	load, calls := counter("ok")
	got, err := s.Remember(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
	assert.Equal(t, int32(1), calls.Load())
}

type brokenCache struct{ sets atomic.Int32 }

func (b *brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (b *brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	b.sets.Add(1)
	return errors.New("connection refused")
}

func (b *brokenCache) InvalidatePattern(context.Context, string) error {
	return errors.New("connection refused")
}

func TestCacheFailuresAreSwallowed(t *testing.T) {
	bc := &brokenCache{}
	s := NewStore(bc, nil, nil)
	ctx := context.Background()
	load, calls := counter("fresh")

	for i := 0; i < 2; i++ {
		got, err := s.Remember(ctx, "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(got))
	}
	assert.Equal(t, int32(2), calls.Load(), "every read falls through to the source")
	assert.Equal(t, int32(2), bc.sets.Load())

	s.Invalidate(ctx, "k")
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	s := NewStore(NewMemory(), nil, nil)
	ctx := context.Background()
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("v"), nil
	}

	const readers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			got, err := s.Remember(ctx, "k", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, "v", string(got))
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, calls.Load(), int32(readers))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestLoadStraddlingInvalidationIsNotStored(t *testing.T) {
	mem := NewMemory()
	s := NewStore(mem, nil, nil)
	ctx := context.Background()

	inLoad := make(chan struct{})
	release := make(chan struct{})
	done := make(chan []byte)
	go func() {
		got, err := s.Remember(ctx, "pages:public:ana:json", time.Minute, func(context.Context) ([]byte, error) {
			close(inLoad)
			<-release
			return []byte("stale"), nil
		})
		assert.NoError(t, err)
		done <- got
	}()

	<-inLoad
	s.Invalidate(ctx, PublicPagePrefix("ana"))
	close(release)
	assert.Equal(t, "stale", string(<-done), "the caller that started the load still gets its result")

	_, ok, err := mem.Get(ctx, "pages:public:ana:json")
	require.NoError(t, err)
	assert.False(t, ok, "a load that began before the invalidation is not cached")

	got, err := s.Remember(ctx, "pages:public:ana:json", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}

func TestCanceledCallerDoesNotCancelSharedLoad(t *testing.T) {
	s := NewStore(NewMemory(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := s.Remember(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("v"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

type catalogView struct {
	Slugs []string `json:"slugs"`
}

func TestRememberJSON(t *testing.T) {
	s := NewStore(NewMemory(), nil, nil)
	ctx := context.Background()
	var calls int
	load := func(context.Context) (catalogView, error) {
		calls++
		return catalogView{Slugs: []string{"minimal", "bold"}}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := RememberJSON(ctx, s, TemplateCatalogKey(""), TTLTemplates, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"minimal", "bold"}, got.Slugs)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, s.Backend().Set(ctx, TemplateCatalogKey(""), []byte("{not json"), time.Minute))
	got, err := RememberJSON(ctx, s, TemplateCatalogKey(""), TTLTemplates, load)
	require.NoError(t, err)
	assert.Len(t, got.Slugs, 2)
	assert.Equal(t, 2, calls)
}

// setHook runs beforeSet once, ahead of the first write that reaches the backend.
type setHook struct {
	*Memory
	beforeSet func()
}

func (h *setHook) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if fn := h.beforeSet; fn != nil {
		h.beforeSet = nil
		fn()
	}
	return h.Memory.Set(ctx, key, val, ttl)
}

func TestFillLandingAfterInvalidationIsRemoved(t *testing.T) {
	mem := NewMemory()
	backend := &setHook{Memory: mem}
	s := NewStore(backend, nil, nil)
	ctx := context.Background()
	key := PublicPageKey("ana")

	// the invalidation clears the family after the epoch check but before the write lands
	backend.beforeSet = func() { s.Invalidate(ctx, PublicPagePrefix("ana")) }
	got, err := s.Remember(ctx, key, time.Minute, func(context.Context) ([]byte, error) {
		return []byte("stale"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", string(got))

	_, ok, err := mem.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "a write that raced an invalidation must not survive it")
}

func TestRememberJSONReloadRespectsInvalidation(t *testing.T) {
	mem := NewMemory()
	s := NewStore(mem, nil, nil)
	ctx := context.Background()
	key := TemplateCatalogKey("")
	require.NoError(t, mem.Set(ctx, key, []byte("{not json"), time.Minute))

	got, err := RememberJSON(ctx, s, key, TTLTemplates, func(context.Context) (catalogView, error) {
		s.Invalidate(ctx, TemplatesPrefix)
		return catalogView{Slugs: []string{"old"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, got.Slugs)

	_, ok, err := mem.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "a reload that straddled an invalidation is not stored")
}

func TestNoopAlwaysMisses(t *testing.T) {
	s := NewStore(nil, nil, nil)
	load, calls := counter("v")
	for i := 0; i < 2; i++ {
		_, err := s.Remember(context.Background(), "k", time.Minute, load)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}
