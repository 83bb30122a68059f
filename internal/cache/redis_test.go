package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) goredis.UniversalClient {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisCache(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()
	c := NewRedis(rdb, "test-"+uuid.NewString())

	_, ok, err := c.Get(ctx, "pages:public:ana:json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "pages:public:ana:json", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "pages:public:ana-2:json", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "pages:public:a*:json", []byte("c"), time.Minute))

	got, ok, err := c.Get(ctx, "pages:public:ana:json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", string(got))

	require.NoError(t, c.InvalidatePattern(ctx, PublicPagePrefix("a*")))
	_, ok, _ = c.Get(ctx, "pages:public:ana:json")
	assert.True(t, ok, "glob characters in a prefix are literal")

	require.NoError(t, c.InvalidatePattern(ctx, PublicPagePrefix("ana")))
	_, ok, _ = c.Get(ctx, "pages:public:ana:json")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "pages:public:ana-2:json")
	assert.True(t, ok)
}

func TestBroadcastForwardsToOtherReplicas(t *testing.T) {
	rdb := testRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	channel := "test-invalidations-" + uuid.NewString()

	aLocal, bLocal := NewMemory(), NewMemory()
	a := NewBroadcast(aLocal, rdb, channel, nil)
	b := NewBroadcast(bLocal, rdb, channel, nil)
	require.NoError(t, a.StartForwarder(ctx))
	require.NoError(t, b.StartForwarder(ctx))

	require.NoError(t, a.Set(ctx, "templates:slug:x", []byte("1"), time.Minute))
	require.NoError(t, b.Set(ctx, "templates:slug:x", []byte("1"), time.Minute))

	require.NoError(t, a.InvalidatePattern(ctx, TemplatesPrefix))
	_, ok, _ := aLocal.Get(ctx, "templates:slug:x")
	assert.False(t, ok, "the publishing replica drops its own copy immediately")

	assert.Eventually(t, func() bool {
		_, ok, _ := bLocal.Get(ctx, "templates:slug:x")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}
