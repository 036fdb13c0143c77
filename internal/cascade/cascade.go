// Package cascade implements the seconds -> minutes -> hours counter chain.
//
// Each Stage owns a Counter and runs in its own goroutine. The Seconds stage
// is driven by a tick source; every other stage is driven by a counting
// release given by the previous stage on overflow, so no overflow is lost when
// a slower stage falls behind. On every tick a stage reports its value to the
// alarm detector and enqueues it for the printer.
package cascade

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/mailbox"
	"github.com/oshokin/alarm-clock/internal/semaphore"
)

// Options wires a cascade to its collaborators.
type Options struct {
	// Source drives the Seconds stage.
	Source Upstream
	// Start is the initial value of every stage.
	Start clock.Time
	// Reporter receives stage values; usually the alarm detector.
	Reporter Reporter
	// Out is the mailbox read by the printer.
	Out *mailbox.Mailbox
	// Recorder is optional.
	Recorder Recorder
}

var (
	errSourceRequired   = errors.New("tick source must be provided")
	errReporterRequired = errors.New("reporter must be provided")
	errMailboxRequired  = errors.New("mailbox must be provided")
)

// Cascade is the ordered chain of stages, fastest first.
type Cascade struct {
	stages [clock.NumKinds]*Stage
}

// New builds the three stages and links them with counting releases.
func New(opts *Options) (*Cascade, error) {
	switch {
	case opts.Source == nil:
		return nil, errSourceRequired
	case opts.Reporter == nil:
		return nil, errReporterRequired
	case opts.Out == nil:
		return nil, errMailboxRequired
	}

	if err := opts.Start.Validate(); err != nil {
		return nil, err
	}

	c := new(Cascade)
	upstream := opts.Source

	for _, kind := range clock.Kinds {
		stage := &Stage{
			kind:     kind,
			counter:  newStageCounter(kind, opts.Start.Get(kind)),
			upstream: upstream,
			reporter: opts.Reporter,
			out:      opts.Out,
			recorder: opts.Recorder,
		}

		if _, ok := kind.Next(); ok {
			release := semaphore.New()
			stage.release = release
			upstream = release
		}

		c.stages[kind] = stage
	}

	return c, nil
}

// Stage returns the stage of the provided kind.
func (c *Cascade) Stage(kind clock.Kind) *Stage {
	return c.stages[kind]
}

// Prime reports every start-up value, slowest stage first, so gated stages
// see their upstream flags.
func (c *Cascade) Prime() {
	for i := len(c.stages) - 1; i >= 0; i-- {
		c.stages[i].Prime()
	}
}

// Pending returns the overflow releases given to kind and not consumed yet.
// It is zero for Seconds, which is driven by the tick source.
func (c *Cascade) Pending(kind clock.Kind) int {
	prev := kind - 1
	if prev < clock.Seconds {
		return 0
	}

	return c.stages[prev].release.Pending()
}

// Run starts every stage and blocks until all of them return.
// A failing stage cancels the others.
func (c *Cascade) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, stage := range c.stages {
		g.Go(func() error {
			return stage.Run(ctx)
		})
	}

	return g.Wait()
}
