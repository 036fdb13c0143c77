// Package semaphore provides a counting release used to hand signals between
// goroutines without losing any of them.
//
// Unlike a flag or a one-slot channel, every Give is remembered and satisfies
// exactly one Take, even when no goroutine is waiting at the time of the Give.
package semaphore

import (
	"context"
	"sync"
)

// Counting is an unbounded counting semaphore. The zero value is not usable;
// use New.
type Counting struct {
	// mu guards count.
	mu sync.Mutex
	// count is the number of releases given but not taken yet.
	count int
	// wake holds at most one pending wake-up for blocked takers.
	wake chan struct{}
}

// New creates a semaphore with no pending releases.
func New() *Counting {
	return &Counting{
		wake: make(chan struct{}, 1),
	}
}

// Give adds one release. It never blocks.
func (c *Counting) Give() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()

	c.signal()
}

// Take blocks until a release is available and consumes it.
// It returns the context error if ctx is done first; no release is consumed then.
func (c *Counting) Take(ctx context.Context) error {
	for {
		if c.TryTake() {
			return nil
		}

		select {
		case <-c.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Wait is Take; it lets a semaphore drive a cascade stage.
func (c *Counting) Wait(ctx context.Context) error {
	return c.Take(ctx)
}

// TryTake consumes a release if one is available and reports whether it did.
func (c *Counting) TryTake() bool {
	c.mu.Lock()

	if c.count == 0 {
		c.mu.Unlock()

		return false
	}

	c.count--
	left := c.count
	c.mu.Unlock()

	// Another taker may have lost its wake-up to us.
	if left > 0 {
		c.signal()
	}

	return true
}

// Pending returns the number of releases not taken yet.
func (c *Counting) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count
}

func (c *Counting) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
