package viewcache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatassist/dialog-manager/pkg/viewcache"
)

func TestCacheGetSet(t *testing.T) {
	c := viewcache.New(time.Minute)

	_, ok := c.Get("stats_42")
	assert.False(t, ok)

	c.Set("stats_42", 7)
	got, ok := c.Get("stats_42")
	require.True(t, ok)
	assert.Equal(t, 7, got)

	// overwrite resets the value
	c.Set("stats_42", 9)
	got, ok = c.Get("stats_42")
	require.True(t, ok)
	assert.Equal(t, 9, got)
}

func TestCacheExpiry(t *testing.T) {
	c := viewcache.New(30 * time.Millisecond)

	c.Set("stats_42", 7)
	_, ok := c.Get("stats_42")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get("stats_42")
	assert.False(t, ok, "read after TTL must behave as a miss")
}

func TestCacheInvalidateBySubstring(t *testing.T) {
	c := viewcache.New(time.Minute)

	c.Set("stats_42", 7)
	c.Set("places_42_all", []string{"a"})
	c.Set("stats_43", 3)

	c.Invalidate("_42")

	_, ok := c.Get("stats_42")
	assert.False(t, ok)
	_, ok = c.Get("places_42_all")
	assert.False(t, ok)

	got, ok := c.Get("stats_43")
	require.True(t, ok, "entries of other users must survive")
	assert.Equal(t, 3, got)
}

func TestCacheClear(t *testing.T) {
	c := viewcache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}
