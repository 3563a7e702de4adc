package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := New(100, time.Minute)
	require.NoError(t, err)

	c.Set("k", 42)
	c.Wait()

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCache_Miss(t *testing.T) {
	c, err := New(100, time.Minute)
	require.NoError(t, err)

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c, err := New(100, time.Minute)
	require.NoError(t, err)

	c.Set("k", "v")
	c.Wait()
	c.Clear()

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, err := New(100, 20*time.Millisecond)
	require.NoError(t, err)

	c.Set("k", "v")
	c.Wait()
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}
