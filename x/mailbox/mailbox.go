// Package mailbox is a bounded FIFO between producers and a single consumer.
package mailbox

import "context"

// DefaultCapacity holds one pending result per sensor.
const DefaultCapacity = 2

type Mailbox[T any] struct {
	ch chan T
}

// New returns a mailbox holding up to capacity messages (DefaultCapacity if <= 0).
func New[T any](capacity int) *Mailbox[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Mailbox[T]{ch: make(chan T, capacity)}
}

// Send enqueues v, blocking while the mailbox is full.
func (m *Mailbox[T]) Send(ctx context.Context, v T) error {
	select {
	case m.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive dequeues the oldest message, blocking while empty.
// Abandoning a Receive (ctx done) consumes nothing.
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-m.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive returns the oldest message, or false if empty.
func (m *Mailbox[T]) TryReceive() (T, bool) {
	select {
	case v := <-m.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

func (m *Mailbox[T]) Len() int { return len(m.ch) }
func (m *Mailbox[T]) Cap() int { return cap(m.ch) }
