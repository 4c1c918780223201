package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver records calls and serves canned answers.
type countingResolver struct {
	calls int
	name  string
	err   error
}

func (r *countingResolver) CountryName(_ context.Context, _, _ float64) (string, error) {
	r.calls++
	return r.name, r.err
}

func TestCachedResolver_CacheHit(t *testing.T) {
	inner := &countingResolver{name: "Greece"}
	c := NewCachedResolver(inner, 10)

	for i := 0; i < 3; i++ {
		name, err := c.CountryName(context.Background(), 37.94, 23.64)
		require.NoError(t, err)
		assert.Equal(t, "Greece", name)
	}
	assert.Equal(t, 1, inner.calls, "repeat lookups served from cache")
}

func TestCachedResolver_EmptyNotCached(t *testing.T) {
	inner := &countingResolver{name: ""}
	c := NewCachedResolver(inner, 10)

	_, _ = c.CountryName(context.Background(), -40.0, -30.0)
	_, _ = c.CountryName(context.Background(), -40.0, -30.0)
	assert.Equal(t, 2, inner.calls, "empty results must be retried")
}

func TestCachedResolver_ErrorNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("status 429")}
	c := NewCachedResolver(inner, 10)

	_, err := c.CountryName(context.Background(), 48.6, 38.0)
	require.Error(t, err)
	_, _ = c.CountryName(context.Background(), 48.6, 38.0)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_Eviction(t *testing.T) {
	inner := &countingResolver{name: "Somewhere"}
	c := NewCachedResolver(inner, 2)

	for i := 0; i < 3; i++ {
		_, _ = c.CountryName(context.Background(), float64(i), 0)
	}
	require.Equal(t, 3, inner.calls)

	// Oldest entry (0,0) was evicted; fetching it again hits the resolver.
	_, _ = c.CountryName(context.Background(), 0, 0)
	assert.Equal(t, 4, inner.calls)

	// Most recent entries are still cached.
	_, _ = c.CountryName(context.Background(), 2, 0)
	assert.Equal(t, 4, inner.calls)
}

func TestLRUCache_MoveToFront(t *testing.T) {
	cache := newLRUCache(2)
	cache.put("a", "1")
	cache.put("b", "2")

	// Touch "a" so "b" becomes least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", "3")

	_, ok = cache.get("b")
	assert.False(t, ok, "b evicted")
	for _, key := range []string{"a", "c"} {
		_, ok := cache.get(key)
		assert.True(t, ok, fmt.Sprintf("%s retained", key))
	}
}
