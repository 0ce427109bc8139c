package counter

import (
	"go.uber.org/atomic"
)

// AtomicCounter is a lock-free Counter. Updates retry a compare-and-swap until they win,
// so no caller ever blocks on another. The zero value is a counter at 0.
type AtomicCounter struct {
	v atomic.Int64
}

// NewAtomicCounter returns an AtomicCounter starting at initial.
func NewAtomicCounter(initial int64) *AtomicCounter {
	c := &AtomicCounter{}
	c.v.Store(initial)
	return c
}

func (c *AtomicCounter) Increment() int64 {
	return c.Add(1)
}

func (c *AtomicCounter) Decrement() int64 {
	return c.Add(-1)
}

func (c *AtomicCounter) Add(delta int64) int64 {
	for {
		old := c.v.Load()
		if c.v.CompareAndSwap(old, old+delta) {
			return old + delta
		}
	}
}

func (c *AtomicCounter) Get() int64 {
	return c.v.Load()
}
