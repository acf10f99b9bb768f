package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, NewRedisKV(c)
}

func TestRedisKV_SetGetDelete(t *testing.T) {
	_, kv := setupRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "submarine:token:abc", "admin", time.Minute))

	v, err := kv.Get(ctx, "submarine:token:abc")
	require.NoError(t, err)
	assert.Equal(t, "admin", v)

	require.NoError(t, kv.Delete(ctx, "submarine:token:abc"))
	_, err = kv.Get(ctx, "submarine:token:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Expiry(t *testing.T) {
	mr, kv := setupRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "submarine:token:a", "1", 0))
	require.NoError(t, kv.Set(ctx, "submarine:token:b", "2", 0))
	require.NoError(t, kv.Set(ctx, "other:c", "3", 0))

	keys, err := kv.ScanKeys(ctx, "submarine:token:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"submarine:token:a", "submarine:token:b"}, keys)
}

func TestMemoryKV_Expiry(t *testing.T) {
	kv := NewMemoryKV()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "t:1", "x", time.Minute))
	require.NoError(t, kv.Set(ctx, "t:2", "y", 0))

	v, err := kv.Get(ctx, "t:1")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	base = base.Add(2 * time.Minute)
	_, err = kv.Get(ctx, "t:1")
	assert.ErrorIs(t, err, ErrMiss)

	keys, err := kv.ScanKeys(ctx, "t:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"t:2"}, keys)

	require.NoError(t, kv.Delete(ctx, "t:2"))
	_, err = kv.Get(ctx, "t:2")
	assert.ErrorIs(t, err, ErrMiss)
}
