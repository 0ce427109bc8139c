// Package counter implements a signed integer counter that is safe for concurrent use.
//
// Two strategies satisfy the same contract: MutexCounter serializes every operation behind a single
// lock, AtomicCounter applies each update with a hardware compare-and-swap and never blocks.
package counter

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Counter is a signed integer that may be shared between any number of goroutines.
// After N increments and M decrements have returned, Get reports initial + N - M.
type Counter interface {
	// Increment adds 1 and returns the new value.
	Increment() int64
	// Decrement subtracts 1 and returns the new value.
	Decrement() int64
	// Add applies delta and returns the new value.
	Add(delta int64) int64
	// Get returns the value as of a single instant.
	Get() int64
}

// Strategy selects how a Counter protects its value.
type Strategy int

const (
	// Mutex guards the value with a sync.Mutex.
	Mutex Strategy = iota
	// Atomic updates the value with compare-and-swap.
	Atomic
)

// Strategies lists every supported Strategy.
var Strategies = []Strategy{Mutex, Atomic}

// ErrUnknownStrategy is returned when a strategy name or value is not recognised.
var ErrUnknownStrategy = errors.New("unknown counter strategy")

func (s Strategy) String() string {
	switch s {
	case Mutex:
		return "mutex"
	case Atomic:
		return "atomic"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a name such as "mutex" or "atomic" into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mutex", "lock":
		return Mutex, nil
	case "atomic", "lockfree", "lock-free":
		return Atomic, nil
	}
	return 0, errors.Wrapf(ErrUnknownStrategy, "%q", name)
}

// New creates a Counter using strategy s, starting at initial.
func New(s Strategy, initial int64) (Counter, error) {
	switch s {
	case Mutex:
		return NewMutexCounter(initial), nil
	case Atomic:
		return NewAtomicCounter(initial), nil
	}
	return nil, errors.Wrap(ErrUnknownStrategy, s.String())
}

// Named attaches a name to a Counter so it can be printed.
func Named(name string, c Counter) NamedCounter {
	return NamedCounter{Counter: c, name: name}
}

// NamedCounter is a Counter with a display name.
type NamedCounter struct {
	Counter
	name string
}

// Name returns the display name.
func (n NamedCounter) Name() string {
	return n.name
}

func (n NamedCounter) String() string {
	return fmt.Sprintf("%s = %d", n.name, n.Get())
}
