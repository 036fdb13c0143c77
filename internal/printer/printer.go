// Package printer is the sole consumer of the clock mailbox.
//
// It drains every waiting message, folds each into the display time by kind,
// then writes exactly one line per batch to the shared output device. Batching
// keeps the output at one line per elapsed second no matter how many stages
// enqueued during that second.
package printer

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/mailbox"
	"github.com/oshokin/alarm-clock/internal/sink"
)

// Recorder receives batch events for metrics.
type Recorder interface {
	Batch(size int)
}

// Printer drains the mailbox and prints the display time.
type Printer struct {
	in       *mailbox.Mailbox
	out      sink.Sink
	recorder Recorder

	// display is only touched by the goroutine running Run.
	display clock.Time

	// mu guards published.
	mu sync.RWMutex
	// published is the display time as of the last printed batch.
	published clock.Time
}

// New creates a printer reading from in and writing to out.
// start seeds the display so the first line is correct even for stages that have not ticked yet.
func New(in *mailbox.Mailbox, out sink.Sink, start clock.Time, recorder Recorder) *Printer {
	return &Printer{
		in:        in,
		out:       out,
		recorder:  recorder,
		display:   start,
		published: start,
	}
}

// Run prints one line per drained batch until ctx is done.
func (p *Printer) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "printer")

	for {
		if err := p.PrintBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		}
	}
}

// PrintBatch blocks for one message, drains the rest without blocking and
// writes the resulting display time once.
func (p *Printer) PrintBatch(ctx context.Context) error {
	msg, err := p.in.Receive(ctx)
	if err != nil {
		return err
	}

	size := 1
	p.apply(msg)

	for {
		msg, ok := p.in.TryReceive()
		if !ok {
			break
		}

		size++
		p.apply(msg)
	}

	snapshot := p.display

	p.mu.Lock()
	p.published = snapshot
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.Batch(size)
	}

	if err := p.out.WriteLine(snapshot.String()); err != nil {
		// A failed write loses one line, not the clock.
		logger.ErrorKV(ctx, "Failed to print time", "error", err)
	}

	return nil
}

// Current returns the display time of the last printed batch.
func (p *Printer) Current() clock.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.published
}

func (p *Printer) apply(msg clock.Message) {
	p.display = p.display.Set(msg.Kind, msg.Value)
}
