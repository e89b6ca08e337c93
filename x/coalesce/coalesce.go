// Package coalesce provides a single-slot, last-write-wins signal.
//
// A Signal holds at most one unconsumed value. Signal overwrites any value that
// has not been taken yet and wakes at most one waiter. Wait blocks until a
// value is present, then takes it atomically:
//
//	s := coalesce.New[types.Order]()
//	s.Signal(types.Order{Cmd: types.On})
//	o, err := s.Wait(ctx)
//
// It is not a queue: two Signal calls before a Wait leave only the second
// value observable.
package coalesce

import (
	"context"
	"sync"
)

type Signal[T any] struct {
	mu   sync.Mutex
	val  T
	set  bool
	wake chan struct{} // capacity 1; a token means "look again"
}

func New[T any]() *Signal[T] {
	return &Signal[T]{wake: make(chan struct{}, 1)}
}

// Signal stores v, replacing any unconsumed value, and wakes one waiter.
func (s *Signal[T]) Signal(v T) {
	s.mu.Lock()
	s.val = v
	s.set = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
		// a token is already pending; the waiter will see the new value
	}
}

// Wait blocks until a value is available or ctx is done.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	for {
		if v, ok := s.TryTake(); ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-s.wake:
		}
	}
}

// TryTake consumes the pending value without blocking.
func (s *Signal[T]) TryTake() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.set {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.set = false
	return v, true
}

// Pending reports whether an unconsumed value is stored.
func (s *Signal[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}
