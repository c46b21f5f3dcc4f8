package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisConfigFor(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}
}

func newTestRedisManager(t *testing.T) (*RedisManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn, err := NewRedisConnection(redisConfigFor(t, mr))
	require.NoError(t, err)
	m, err := NewRedisManager(conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, mr
}

func TestNewRedisConnection_EmptyAddress(t *testing.T) {
	_, err := NewRedisConnection(config.RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyConnectionString)

	_, err = NewRedisManager(nil)
	assert.ErrorIs(t, err, ErrEmptyConnectionString)
}

func TestRedisManager_GetSet(t *testing.T) {
	ctx := context.Background()
	m, mr := newTestRedisManager(t)

	require.NoError(t, m.Set(ctx, "point", cachedPoint{Name: "NY", Order: 2}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("point"))

	var got cachedPoint
	found, err := m.Get(ctx, "point", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedPoint{Name: "NY", Order: 2}, got)

	set, err := m.IsSet(ctx, "point")
	require.NoError(t, err)
	assert.True(t, set)

	t.Run("missing and null values", func(t *testing.T) {
		var v cachedPoint
		found, err := m.Get(ctx, "missing", &v)
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, mr.Set("null", "null"))
		found, err = m.Get(ctx, "null", &v)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("nil data is ignored", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "nil", nil, time.Minute))
		assert.False(t, mr.Exists("nil"))
	})

	t.Run("zero cache time has no ttl", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "forever", 1, 0))
		assert.Equal(t, time.Duration(0), mr.TTL("forever"))
	})
}

func TestRedisManager_PerRequestCache(t *testing.T) {
	m, mr := newTestRedisManager(t)
	perRequest := NewMemoryCache()
	ctx := WithPerRequest(context.Background(), perRequest)

	require.NoError(t, m.Set(ctx, "store", "main", time.Minute))

	var v string
	found, err := m.Get(ctx, "store", &v)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"store"}, perRequest.Keys())

	// served from the request cache once Redis forgets it
	mr.Del("store")
	v = ""
	found, err = m.Get(ctx, "store", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "main", v)

	require.NoError(t, m.Remove(ctx, "store"))
	assert.Empty(t, perRequest.Keys())
}

func TestRedisManager_ProtectedKey(t *testing.T) {
	ctx := context.Background()
	m, mr := newTestRedisManager(t)

	require.NoError(t, mr.Set(ProtectedKey, "keys"))
	require.NoError(t, mr.Set("storefront.pickuppoint.all-1", "1"))
	require.NoError(t, mr.Set("storefront.pickuppoint.all-2", "2"))
	require.NoError(t, mr.Set("storefront.country.all", "3"))

	require.NoError(t, m.Remove(ctx, "STOREFRONT.DataProtectionKeys"))
	assert.True(t, mr.Exists(ProtectedKey))

	require.NoError(t, m.RemoveByPattern(ctx, "storefront.pickuppoint."))
	assert.False(t, mr.Exists("storefront.pickuppoint.all-1"))
	assert.False(t, mr.Exists("storefront.pickuppoint.all-2"))
	assert.True(t, mr.Exists("storefront.country.all"))

	require.NoError(t, m.RemoveByPattern(ctx, "dataprotection"))
	assert.True(t, mr.Exists(ProtectedKey))

	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, []string{ProtectedKey}, mr.Keys())
}

func TestRedisConnection_Reconnects(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	conn, err := NewRedisConnection(redisConfigFor(t, mr), WithHealthInterval(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	first, err := conn.Database(ctx)
	require.NoError(t, err)

	mr.Close()
	_, err = conn.Database(ctx)
	assert.Error(t, err)

	require.NoError(t, mr.Restart())
	second, err := conn.Database(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	require.NoError(t, second.Set(ctx, "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))

	ran, err := conn.PerformActionWithLock(ctx, "task", time.Minute, func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRedisConnection_Locker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	conn, err := NewRedisConnection(redisConfigFor(t, mr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	assert.Equal(t, []string{mr.Addr()}, conn.Addrs())

	var innerRan bool
	ran, err := conn.PerformActionWithLock(ctx, "task", time.Minute, func(ctx context.Context) error {
		innerAcquired, innerErr := conn.PerformActionWithLock(ctx, "task", time.Minute, func(context.Context) error {
			innerRan = true
			return nil
		})
		assert.NoError(t, innerErr)
		assert.False(t, innerAcquired)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, innerRan)
	assert.False(t, mr.Exists("task"))

	t.Run("action error is returned after unlocking", func(t *testing.T) {
		boom := errors.New("boom")
		ran, err := conn.PerformActionWithLock(ctx, "task", time.Minute, func(context.Context) error { return boom })
		assert.True(t, ran)
		assert.ErrorIs(t, err, boom)
		assert.False(t, mr.Exists("task"))
	})

	t.Run("flush database", func(t *testing.T) {
		require.NoError(t, mr.Set(ProtectedKey, "x"))
		require.NoError(t, conn.FlushDatabase(ctx))
		assert.Empty(t, mr.Keys())
	})

	t.Run("unknown server", func(t *testing.T) {
		_, err := conn.Server(ctx, "10.0.0.1:1")
		assert.Error(t, err)
	})
}

func TestRedisConnection_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfigFor(t, mr)
	mr.Close()

	conn, err := NewRedisConnection(cfg)
	require.NoError(t, err)

	_, err = conn.Database(context.Background())
	assert.Error(t, err)

	ran, err := conn.PerformActionWithLock(context.Background(), "task", time.Minute, func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.False(t, ran)
}
