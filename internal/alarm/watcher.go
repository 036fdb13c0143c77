package alarm

import (
	"context"
	"errors"

	"github.com/fatih/color"

	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/semaphore"
	"github.com/oshokin/alarm-clock/internal/sink"
)

// Line is printed once per alarm.
const Line = "Alarm reached!!"

// Starter runs a side effect on every alarm.
type Starter interface {
	Start(ctx context.Context) error
}

// Watcher is the alarm consumer: it waits for notifications and prints the alarm line.
type Watcher struct {
	// notify is shared with the Detector.
	notify *semaphore.Counting
	// out is the shared output device.
	out sink.Sink
	// line is the rendered alarm line.
	line string
	// action is optional.
	action Starter
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithHighlight renders the alarm line in bold red on terminals.
func WithHighlight() WatcherOption {
	return func(w *Watcher) {
		w.line = color.New(color.FgRed, color.Bold).Sprint(Line)
	}
}

// WithAction starts a side effect after every printed alarm.
func WithAction(action Starter) WatcherOption {
	return func(w *Watcher) {
		w.action = action
	}
}

// NewWatcher creates an alarm consumer.
func NewWatcher(notify *semaphore.Counting, out sink.Sink, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		notify: notify,
		out:    out,
		line:   Line,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run prints one alarm line per notification until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "alarm")

	for {
		if err := w.notify.Take(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		}

		if err := w.out.WriteLine(w.line); err != nil {
			logger.ErrorKV(ctx, "Failed to print alarm", "error", err)
		}

		logger.Info(ctx, "Alarm reached")

		if w.action == nil {
			continue
		}

		if err := w.action.Start(ctx); err != nil {
			logger.ErrorKV(ctx, "Failed to start alarm action", "error", err)
		}
	}
}
