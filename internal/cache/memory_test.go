package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	now = now.Add(time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry expires at its TTL")
	assert.Equal(t, 0, m.Len())
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	val := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", val, 0))
	val[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'y'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryInvalidatePattern(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, k := range []string{"pages:public:ana:json", "pages:public:ana-2:json", "render:o:p:html", "templates:slug:x"} {
		require.NoError(t, m.Set(ctx, k, []byte(k), time.Hour))
	}

	require.NoError(t, m.InvalidatePattern(ctx, PublicPagePrefix("ana")))
	_, ok, _ := m.Get(ctx, "pages:public:ana:json")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "pages:public:ana-2:json")
	assert.True(t, ok, "a slug that merely starts with another is untouched")

	require.NoError(t, m.InvalidatePattern(ctx, "nothing:"), "invalidating an absent family succeeds")
	assert.Equal(t, 3, m.Len())
}

func TestMemorySweepsExpiredEntries(t *testing.T) {
	now := time.Unix(0, 0)
	m := NewMemory().WithClock(func() time.Time { return now })
	m.sweepAt = 4
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Set(ctx, k, nil, time.Second))
	}
	now = now.Add(2 * time.Second)
	require.NoError(t, m.Set(ctx, "d", nil, time.Second))
	assert.Equal(t, 1, m.Len())
}
