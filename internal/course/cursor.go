package course

import "sync"

// Cursors caches the step index each chat is currently gated on. The cache
// is ephemeral: it does not survive a restart and is rebuilt lazily from the
// progress store, which keeps the durable copy of the same value.
type Cursors struct {
	mu      sync.RWMutex
	indexes map[int64]int
}

// NewCursors returns an empty cursor cache.
func NewCursors() *Cursors {
	return &Cursors{indexes: make(map[int64]int)}
}

// Get returns the cached index for id and whether one is present.
func (c *Cursors) Get(id int64) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.indexes[id]
	return idx, ok
}

// Set records the index for id.
func (c *Cursors) Set(id int64, idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[id] = idx
}

// Forget drops the cached entry for id.
func (c *Cursors) Forget(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.indexes, id)
}
