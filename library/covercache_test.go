package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverCache(t *testing.T) {
	c := NewCoverCache()

	_, ok := c.Get("isbn-1")
	assert.False(t, ok)

	c.Put("isbn-1", []byte{1, 2, 3})
	img, ok := c.Get("isbn-1")
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, img)
	assert.Equal(t, 1, c.Len())

	// Empty covers are not worth caching.
	c.Put("isbn-2", nil)
	_, ok = c.Get("isbn-2")
	assert.False(t, ok)

	c.Invalidate("isbn-1")
	_, ok = c.Get("isbn-1")
	assert.False(t, ok)

	c.Put("a", []byte{1})
	c.Put("b", []byte{2})
	c.Clear()
	assert.Equal(t, 0, c.Len())
}
