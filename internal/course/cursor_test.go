package course

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursors(t *testing.T) {
	c := NewCursors()

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(1, 4)
	idx, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	c.Forget(1)
	_, ok = c.Get(1)
	assert.False(t, ok)
}

func TestCursorsConcurrentAccess(t *testing.T) {
	c := NewCursors()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(int64(n%4), n)
			c.Get(int64(n % 4))
		}(i)
	}
	wg.Wait()
}
