// Package tick supplies the wake events that drive the seconds stage.
package tick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/semaphore"
)

// DefaultPeriod is the nominal length of one clock second.
const DefaultPeriod = time.Second

// errInvalidPeriod is returned for a non-positive period.
var errInvalidPeriod = errors.New("tick period must be positive")

// Source blocks the caller until the next tick.
type Source interface {
	Wait(ctx context.Context) error
}

// Periodic emits one tick per period from a monotonic ticker.
// Ticks missed while the consumer is busy are dropped by the ticker, so the
// stage never runs ahead of the period.
type Periodic struct {
	// ticker is the underlying runtime ticker.
	ticker *time.Ticker
}

// NewPeriodic starts a ticker with the provided period.
func NewPeriodic(period time.Duration) (*Periodic, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %s", errInvalidPeriod, period)
	}

	return &Periodic{
		ticker: time.NewTicker(period),
	}, nil
}

// Wait blocks until the next period elapses.
func (p *Periodic) Wait(ctx context.Context) error {
	select {
	case <-p.ticker.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop releases the ticker.
func (p *Periodic) Stop() {
	p.ticker.Stop()
}

// Manual is a Source advanced explicitly by Advance.
// Advances are counted, so none is lost if the stage is busy.
type Manual struct {
	// pending holds advances not yet consumed by Wait.
	pending *semaphore.Counting
}

// NewManual creates a source with no pending ticks.
func NewManual() *Manual {
	return &Manual{
		pending: semaphore.New(),
	}
}

// Advance queues n ticks.
func (m *Manual) Advance(n int) {
	for range n {
		m.pending.Give()
	}
}

// Wait blocks until a queued tick is available.
func (m *Manual) Wait(ctx context.Context) error {
	return m.pending.Take(ctx)
}

// Pending returns the number of queued ticks.
func (m *Manual) Pending() int {
	return m.pending.Pending()
}
