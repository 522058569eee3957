// File: pump/sender.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pump

import (
	"errors"

	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/notify"
)

// Sender is the producing end of a pump.
type Sender[T any] struct {
	c   *core[T]
	ctl *notify.Notifier
}

// Send stores v, waiting while the buffer is full, then signals the
// receiver. If signalling fails the value is already queued: the error
// wraps the cause (usually api.ErrNotificationSaturated) and the caller
// may retry the wakeup alone with Notify. Send returns api.ErrClosed
// without storing v once either end is closed.
func (s *Sender[T]) Send(v T) error {
	if s.c.closed.Load() || s.c.rxClosed.Load() {
		return api.ErrClosed
	}
	if !s.c.ring.PushUntil(v, s.c.rxClosed.Load) {
		return api.ErrClosed
	}
	s.c.sent.Add(1)
	return s.signal()
}

// TrySend stores v only if there is room. It reports false when the
// buffer is full. Errors have the same meaning as for Send.
func (s *Sender[T]) TrySend(v T) (bool, error) {
	if s.c.closed.Load() || s.c.rxClosed.Load() {
		return false, api.ErrClosed
	}
	if !s.c.ring.TryPush(v) {
		return false, nil
	}
	s.c.sent.Add(1)
	return true, s.signal()
}

// Notify signals the receiver without sending a value. It is the retry
// path after a Send whose notification failed.
func (s *Sender[T]) Notify() error {
	if s.c.closed.Load() {
		return api.ErrClosed
	}
	return s.signal()
}

func (s *Sender[T]) signal() error {
	err := s.ctl.Increment()
	if err == nil {
		return nil
	}
	code := api.ErrCodeInternal
	if errors.Is(err, api.ErrNotificationSaturated) {
		s.c.saturated.Add(1)
		code = api.ErrCodeSaturated
	}
	return api.NewError(code, "pump: value queued, receiver not signalled").
		Wrap(err).
		WithContext("len", s.c.ring.Len())
}

// Close ends the stream. Values already sent stay receivable; once they
// are drained the receiver reports api.ErrClosed. A final notification
// wakes a parked receiver so it can observe the end. Idempotent.
func (s *Sender[T]) Close() error {
	if !s.c.closed.CompareAndSwap(false, true) {
		return nil
	}
	// a saturated counter is already readable, so the wakeup is not lost
	if err := s.ctl.Increment(); err != nil && !errors.Is(err, api.ErrNotificationSaturated) && !errors.Is(err, api.ErrClosed) {
		s.ctl.Close()
		return err
	}
	return s.ctl.Close()
}

// Len returns the number of values waiting in the buffer.
func (s *Sender[T]) Len() int { return s.c.ring.Len() }

// Cap returns the buffer capacity.
func (s *Sender[T]) Cap() int { return s.c.ring.Cap() }
