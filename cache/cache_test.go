package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheHitAndExpiry(t *testing.T) {
	c := New(10, 50*time.Millisecond)

	key := Key("search", "gloomhaven")
	c.Set(key, "payload")

	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "payload", got)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestCacheMiss(t *testing.T) {
	c := New(10, time.Minute)
	_, ok := c.Get(Key("hot", ""))
	assert.False(t, ok)
}

func TestCacheEvictsAtCapacity(t *testing.T) {
	c := New(3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set(Key("search", fmt.Sprintf("q%d", i)), i)
	}
	assert.Len(t, c.store, 3)
}

func TestKeyDistinguishesOperations(t *testing.T) {
	assert.NotEqual(t, Key("search", "catan"), Key("hot", "catan"))
	assert.Equal(t, Key("search", "catan"), Key("search", "catan"))
}
