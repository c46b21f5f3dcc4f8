package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPoint struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()

	require.NoError(t, m.Set(ctx, "point", cachedPoint{Name: "NY", Order: 1}, 0))

	var got cachedPoint
	found, err := m.Get(ctx, "point", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedPoint{Name: "NY", Order: 1}, got)

	t.Run("pointer values are dereferenced", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "ptr", &cachedPoint{Name: "LA"}, 0))
		var v cachedPoint
		found, err := m.Get(ctx, "ptr", &v)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "LA", v.Name)
	})

	t.Run("different types go through json", func(t *testing.T) {
		var v map[string]any
		found, err := m.Get(ctx, "point", &v)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "NY", v["name"])
	})

	t.Run("missing key", func(t *testing.T) {
		var v cachedPoint
		found, err := m.Get(ctx, "missing", &v)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, cachedPoint{}, v)
	})

	t.Run("invalid destination", func(t *testing.T) {
		_, err := m.Get(ctx, "point", got)
		assert.ErrorIs(t, err, ErrInvalidDestination)
	})

	t.Run("nil data is ignored", func(t *testing.T) {
		var p *cachedPoint
		require.NoError(t, m.Set(ctx, "nil", p, 0))
		set, _ := m.IsSet(ctx, "nil")
		assert.False(t, set)
	})
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCache()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", 1, time.Minute))
	require.NoError(t, m.Set(ctx, "forever", 2, 0))

	set, _ := m.IsSet(ctx, "short")
	assert.True(t, set)

	now = now.Add(2 * time.Minute)

	set, _ = m.IsSet(ctx, "short")
	assert.False(t, set)
	assert.Equal(t, []string{"forever"}, m.Keys())
}

func TestMemoryCache_RemoveByPattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()
	for _, k := range []string{"storefront.pickuppoint.all-1", "Storefront.PickupPoint.all-2", "storefront.country.all"} {
		require.NoError(t, m.Set(ctx, k, k, 0))
	}

	require.NoError(t, m.RemoveByPattern(ctx, "storefront.pickuppoint."))
	assert.Equal(t, []string{"storefront.country.all"}, m.Keys())

	assert.Error(t, m.RemoveByPattern(ctx, "(unclosed"))

	require.NoError(t, m.Remove(ctx, "storefront.country.all"))
	require.NoError(t, m.Set(ctx, "a", 1, 0))
	require.NoError(t, m.Clear(ctx))
	assert.Empty(t, m.Keys())
}

func TestMemoryCache_ProtectedKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()
	require.NoError(t, m.Set(ctx, ProtectedKey, "keys", 0))
	require.NoError(t, m.Set(ctx, "storefront.pickuppoint.all-1", 1, 0))

	require.NoError(t, m.Remove(ctx, "STOREFRONT.DataProtectionKeys"))
	require.NoError(t, m.RemoveByPattern(ctx, "dataprotection"))
	set, _ := m.IsSet(ctx, ProtectedKey)
	assert.True(t, set)

	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, []string{ProtectedKey}, m.Keys())
}

func TestMemoryCache_IsolatedValues(t *testing.T) {
	ctx := context.Background()

	t.Run("mutating a fetched value leaves the cache alone", func(t *testing.T) {
		m := NewMemoryCache(WithIsolatedValues())
		stored := &cachedPoint{Name: "NY", Order: 1}
		require.NoError(t, m.Set(ctx, "point", stored, 0))
		stored.Name = "changed before get"

		var first *cachedPoint
		found, err := m.Get(ctx, "point", &first)
		require.NoError(t, err)
		require.True(t, found)
		first.Name = "changed after get"

		var second cachedPoint
		_, err = m.Get(ctx, "point", &second)
		require.NoError(t, err)
		assert.Equal(t, cachedPoint{Name: "NY", Order: 1}, second)
	})

	t.Run("shared cache hands out the same pointer", func(t *testing.T) {
		m := NewMemoryCache()
		stored := &cachedPoint{Name: "NY"}
		require.NoError(t, m.Set(ctx, "point", stored, 0))

		var got *cachedPoint
		_, err := m.Get(ctx, "point", &got)
		require.NoError(t, err)
		assert.Same(t, stored, got)
	})

	t.Run("undecodable value", func(t *testing.T) {
		m := NewMemoryCache(WithIsolatedValues())
		require.NoError(t, m.Set(ctx, "name", "NY", 0))
		var n int
		_, err := m.Get(ctx, "name", &n)
		assert.Error(t, err)
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	var c NullCache

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
	set, _ := c.IsSet(ctx, "k")
	assert.False(t, set)
	assert.NoError(t, c.Remove(ctx, "k"))
	assert.NoError(t, c.RemoveByPattern(ctx, "k"))
	assert.NoError(t, c.Clear(ctx))
	assert.NoError(t, c.Close())
}

func TestPerRequest(t *testing.T) {
	assert.IsType(t, NullCache{}, PerRequest(context.Background()))

	mc := NewMemoryCache()
	ctx := WithPerRequest(context.Background(), mc)
	assert.Same(t, mc, PerRequest(ctx))
}
