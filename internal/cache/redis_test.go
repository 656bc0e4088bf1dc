package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	srv := miniredis.RunT(t)
	return New(srv.Addr(), 0)
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache(t)

	err := c.Set("greeting", "hello", time.Minute)
	require.NoError(t, err)

	value, found, err := c.Get("greeting")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "hello", value)

	_, found, err = c.Get("missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheSetIfAbsent(t *testing.T) {
	c := newTestCache(t)

	stored, err := c.SetIfAbsent("throttle", "1", time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	stored, err = c.SetIfAbsent("throttle", "2", time.Minute)
	require.NoError(t, err)
	require.False(t, stored)

	value, found, err := c.Get("throttle")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", value)
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("key", "value", time.Minute))
	require.NoError(t, c.Delete("key"))

	exists, err := c.Exists("key")
	require.NoError(t, err)
	require.False(t, exists)
}
