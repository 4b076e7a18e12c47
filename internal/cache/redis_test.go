package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	_, ok, err := rc.Get(ctx, "https://deetlist.com/a")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is a miss, not an error")

	require.NoError(t, rc.Set(ctx, "https://deetlist.com/a", "<html>a</html>", time.Hour))

	stored, err := mr.Get(KeyPrefix + "https://deetlist.com/a")
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", stored)
	assert.False(t, mr.Exists("https://deetlist.com/a"), "keys are namespaced")

	body, ok, err := rc.Get(ctx, "https://deetlist.com/a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html>a</html>", body)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "short", "x", time.Minute))
	require.NoError(t, rc.Set(ctx, "forever", "y", 0))
	assert.Equal(t, time.Minute, mr.TTL(KeyPrefix+"short"))
	assert.Equal(t, time.Duration(0), mr.TTL(KeyPrefix+"forever"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := rc.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = rc.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)
	mr.Close()

	_, _, err := rc.Get(ctx, "https://deetlist.com/a")
	assert.Error(t, err)
	assert.Error(t, rc.Set(ctx, "https://deetlist.com/a", "x", time.Minute))
}
