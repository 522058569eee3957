// File: pump/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pump

import (
	"errors"

	"github.com/momentics/hioload-pump/api"
)

// StreamState is the pull adapter's position.
type StreamState uint8

const (
	// Idle: nothing attempted since the last delivered value.
	Idle StreamState = iota
	// AwaitingReadiness: the last poll found the buffer empty; poll again
	// after the registered readiness event fires.
	AwaitingReadiness
	// ValueReady: the last poll produced a value.
	ValueReady
	// Closed: the sender is gone and the buffer is drained.
	Closed
)

func (s StreamState) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReadiness:
		return "awaiting-readiness"
	case ValueReady:
		return "value-ready"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream is a lazy, non-blocking sequence over a Receiver, meant to be
// redriven by a single-goroutine cooperative scheduler whenever the
// registered readiness event fires.
type Stream[T any] struct {
	rx    *Receiver[T]
	state StreamState
}

var _ api.Evented = (*Stream[int])(nil)

// Poll attempts to take the next value. It never blocks.
// It reports api.NotReady when the buffer is empty, api.Ready with the
// value, or api.Done once the sender is closed and everything was taken.
func (s *Stream[T]) Poll() (api.Async[T], error) {
	if s.state == Closed {
		return api.Async[T]{State: api.Done}, nil
	}
	if s.state == ValueReady {
		s.state = Idle
	}
	v, ok, err := s.rx.recv()
	switch {
	case errors.Is(err, api.ErrClosed):
		s.state = Closed
		return api.Async[T]{State: api.Done}, nil
	case err != nil:
		return api.Async[T]{}, err
	case !ok:
		s.state = AwaitingReadiness
		return api.Async[T]{State: api.NotReady}, nil
	}
	s.state = ValueReady
	return api.ReadyValue(v), nil
}

// State returns the adapter's current position.
func (s *Stream[T]) State() StreamState { return s.state }

// Register delegates to the underlying receiver.
func (s *Stream[T]) Register(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	return s.rx.Register(sel, token, interest, opts)
}

// Reregister delegates to the underlying receiver.
func (s *Stream[T]) Reregister(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	return s.rx.Reregister(sel, token, interest, opts)
}

// Deregister delegates to the underlying receiver.
func (s *Stream[T]) Deregister(sel api.Selector) error {
	return s.rx.Deregister(sel)
}

// Stats returns counters for the whole pump.
func (s *Stream[T]) Stats() Stats { return s.rx.Stats() }

// Close releases the underlying receiver.
func (s *Stream[T]) Close() error {
	s.state = Closed
	return s.rx.Close()
}
