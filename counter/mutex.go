package counter

import "sync"

// MutexCounter is a Counter whose value is guarded by a single exclusive lock.
// Every caller is serialized, so throughput drops as contention rises.
// The zero value is a counter at 0.
type MutexCounter struct {
	mu sync.Mutex
	v  int64
}

// NewMutexCounter returns a MutexCounter starting at initial.
func NewMutexCounter(initial int64) *MutexCounter {
	return &MutexCounter{
		v: initial,
	}
}

func (c *MutexCounter) Increment() int64 {
	return c.Add(1)
}

func (c *MutexCounter) Decrement() int64 {
	return c.Add(-1)
}

func (c *MutexCounter) Add(delta int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v += delta
	return c.v
}

func (c *MutexCounter) Get() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}
