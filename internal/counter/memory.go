package counter

import "sync/atomic"

// MemoryCounter is the in-process fallback counter.
//
// Each process owns its own value: with several instances (or prefork children)
// the fallback is not consistent across them. It is only ever a degraded path.
type MemoryCounter struct {
	value atomic.Int64
}

// NewMemoryCounter allocates a counter starting at seed.
func NewMemoryCounter(seed int64) *MemoryCounter {
	c := &MemoryCounter{}
	c.value.Store(seed)
	return c
}

// Load returns the current value without mutating it.
func (c *MemoryCounter) Load() int64 {
	return c.value.Load()
}

// Increment adds one and returns the new value in a single atomic step.
func (c *MemoryCounter) Increment() int64 {
	return c.value.Add(1)
}
