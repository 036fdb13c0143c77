// Package mailbox implements the bounded FIFO that carries stage values from
// the cascade counters to the printer.
//
// Many producers may Send concurrently; a single consumer Receives. A full
// mailbox blocks its producers, an empty one blocks the consumer. Messages are
// values, so a Send hands ownership over and a Receive takes it.
package mailbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
)

// DefaultCapacity matches the three-slot queue of the reference clock.
const DefaultCapacity = 3

// errInvalidCapacity is returned for a non-positive capacity.
var errInvalidCapacity = errors.New("mailbox capacity must be positive")

// Mailbox is a bounded multi-producer, single-consumer queue of clock messages.
type Mailbox struct {
	// messages is the underlying buffered channel; its buffer is the capacity.
	messages chan clock.Message
}

// New creates a mailbox that holds up to capacity messages.
func New(capacity int) (*Mailbox, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", errInvalidCapacity, capacity)
	}

	return &Mailbox{
		messages: make(chan clock.Message, capacity),
	}, nil
}

// Send enqueues msg, blocking while the mailbox is full.
func (m *Mailbox) Send(ctx context.Context, msg clock.Message) error {
	select {
	case m.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues msg only if there is room and reports whether it did.
func (m *Mailbox) TrySend(msg clock.Message) bool {
	select {
	case m.messages <- msg:
		return true
	default:
		return false
	}
}

// Receive dequeues the oldest message, blocking while the mailbox is empty.
func (m *Mailbox) Receive(ctx context.Context) (clock.Message, error) {
	select {
	case msg := <-m.messages:
		return msg, nil
	case <-ctx.Done():
		return clock.Message{}, ctx.Err()
	}
}

// TryReceive dequeues the oldest message if any is waiting.
func (m *Mailbox) TryReceive() (clock.Message, bool) {
	select {
	case msg := <-m.messages:
		return msg, true
	default:
		return clock.Message{}, false
	}
}

// Len returns the number of messages waiting.
func (m *Mailbox) Len() int {
	return len(m.messages)
}

// Cap returns the mailbox capacity.
func (m *Mailbox) Cap() int {
	return cap(m.messages)
}
