package cascade

import (
	"context"
	"errors"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/mailbox"
	"github.com/oshokin/alarm-clock/internal/semaphore"
)

// Upstream blocks a stage until its next unit: a tick for Seconds,
// an overflow release for Minutes and Hours.
type Upstream interface {
	Wait(ctx context.Context) error
}

// Reporter receives the stage values that drive the alarm.
type Reporter interface {
	Issue(kind clock.Kind)
	Observe(kind clock.Kind, value int)
	Report(kind clock.Kind, value int)
}

// Recorder receives stage events for metrics.
type Recorder interface {
	Tick(kind clock.Kind)
	Overflow(kind clock.Kind)
	QueueDepth(depth int)
}

// Stage is one counter of the cascade together with the task that drives it.
// The counter is owned by the goroutine running Run.
type Stage struct {
	kind     clock.Kind
	counter  *Counter
	upstream Upstream
	// release is given once per overflow; nil for the slowest stage.
	release  *semaphore.Counting
	reporter Reporter
	out      *mailbox.Mailbox
	recorder Recorder
}

// Run waits for upstream units and ticks once per unit until ctx is done.
func (s *Stage) Run(ctx context.Context) error {
	ctx = logger.WithKV(logger.WithName(ctx, "cascade"), "stage", s.kind.String())
	logger.DebugKV(ctx, "Stage started", "value", s.counter.Value())

	for {
		if err := s.upstream.Wait(ctx); err != nil {
			return ignoreCanceled(err)
		}

		if err := s.step(ctx); err != nil {
			return ignoreCanceled(err)
		}
	}
}

// Prime reports the start-up value before any tick.
func (s *Stage) Prime() {
	s.reporter.Observe(s.kind, s.counter.Value())
}

// Kind returns the stage kind.
func (s *Stage) Kind() clock.Kind {
	return s.kind
}

// Value returns the counter value. It is only safe to call from the goroutine
// running Run, or after Run returned.
func (s *Stage) Value() int {
	return s.counter.Value()
}

// step increments the counter, releases the next stage on overflow, reports the
// match and enqueues the new value, in that order.
func (s *Stage) step(ctx context.Context) error {
	overflow := s.counter.Tick()
	value := s.counter.Value()

	if s.recorder != nil {
		s.recorder.Tick(s.kind)
	}

	if overflow && s.release != nil {
		next, _ := s.kind.Next()

		// The detector must count the release before the next stage can consume it.
		s.reporter.Issue(next)
		s.release.Give()

		if s.recorder != nil {
			s.recorder.Overflow(s.kind)
		}
	}

	s.reporter.Report(s.kind, value)

	if err := s.out.Send(ctx, clock.Message{Kind: s.kind, Value: value}); err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.QueueDepth(s.out.Len())
	}

	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
