package cascade

import (
	"fmt"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
)

// Counter is a bounded counter that wraps at its modulus.
// It is not safe for concurrent use; a Stage owns it.
type Counter struct {
	value   int
	modulus int
}

// NewCounter creates a counter starting at start.
// It panics if modulus is not positive or start is outside [0, modulus).
func NewCounter(modulus, start int) *Counter {
	if modulus <= 0 {
		panic(fmt.Sprintf("cascade: modulus %d must be positive", modulus))
	}

	c := &Counter{
		value:   start,
		modulus: modulus,
	}
	c.check()

	return c
}

// Tick increments the counter and reports whether it wrapped to zero.
func (c *Counter) Tick() bool {
	c.value++

	overflow := c.value == c.modulus
	if overflow {
		c.value = 0
	}

	c.check()

	return overflow
}

// Value returns the current value.
func (c *Counter) Value() int {
	return c.value
}

// Modulus returns the counter modulus.
func (c *Counter) Modulus() int {
	return c.modulus
}

func (c *Counter) check() {
	if c.value < 0 || c.value >= c.modulus {
		panic(fmt.Sprintf("cascade: value %d outside [0, %d)", c.value, c.modulus))
	}
}

// newStageCounter creates the counter for a clock stage.
func newStageCounter(kind clock.Kind, start int) *Counter {
	return NewCounter(kind.Modulus(), start)
}
