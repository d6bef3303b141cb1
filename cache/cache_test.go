package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestStrings(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	_, ok, err := s.GetString(ctx, "asset:seq:LA")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetString(ctx, "asset:seq:LA", "9"))
	v, ok, err := s.GetString(ctx, "asset:seq:LA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "9", v)
	assert.Equal(t, 0, int(mr.TTL("asset:seq:LA")))

	set, err := s.SetStringNX(ctx, "asset:seq:LA", "1")
	require.NoError(t, err)
	assert.False(t, set)

	n, err := s.Incr(ctx, "asset:seq:LA")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestBits(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	on, err := s.GetBit(ctx, "auth:revoked", 42)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, s.SetBit(ctx, "auth:revoked", 42, true))
	on, err = s.GetBit(ctx, "auth:revoked", 42)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = s.GetBit(ctx, "auth:revoked", 41)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, s.SetBit(ctx, "auth:revoked", 42, false))
	on, err = s.GetBit(ctx, "auth:revoked", 42)
	require.NoError(t, err)
	assert.False(t, on)
}
