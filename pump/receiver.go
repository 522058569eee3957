// File: pump/receiver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pump

import (
	"sync/atomic"

	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/notify"
)

// Receiver is the consuming end of a pump. It is itself registrable with
// an api.Selector.
type Receiver[T any] struct {
	c        *core[T]
	ctl      *notify.Listener
	consumed atomic.Bool
}

var _ api.Evented = (*Receiver[int])(nil)

// Recv returns the oldest value without blocking. ok is false when the
// buffer is empty; that is not an error. Once the sender is closed and
// every value has been received, Recv returns api.ErrClosed.
func (r *Receiver[T]) Recv() (v T, ok bool, err error) {
	if r.consumed.Load() {
		return v, false, api.ErrReceiverConsumed
	}
	return r.recv()
}

func (r *Receiver[T]) recv() (v T, ok bool, err error) {
	if v, ok = r.pop(); ok {
		return v, true, nil
	}
	if r.ctl.Pending() > 0 {
		// Reset before the second look: a push that misses it signals
		// after the reset and leaves the descriptor readable.
		if _, err = r.ctl.Reset(); err != nil {
			return v, false, err
		}
		r.c.resets.Add(1)
		if v, ok = r.pop(); ok {
			return v, true, nil
		}
	}
	if r.c.closed.Load() {
		// every push happened before close; one last look settles it
		if v, ok = r.pop(); ok {
			return v, true, nil
		}
		return v, false, api.ErrClosed
	}
	return v, false, nil
}

func (r *Receiver[T]) pop() (T, bool) {
	v, ok := r.c.ring.TryPop()
	if ok {
		r.c.received.Add(1)
	}
	return v, ok
}

// Drain receives until the buffer is empty, calling fn for each value,
// and returns how many values were delivered. This is the loop every
// readiness wakeup should run. api.ErrClosed is returned once the sender
// is closed and nothing is left.
func (r *Receiver[T]) Drain(fn func(T)) (int, error) {
	if r.consumed.Load() {
		return 0, api.ErrReceiverConsumed
	}
	n := 0
	for {
		v, ok, err := r.recv()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		fn(v)
		n++
	}
}

// Stream converts the receiver into a pull adapter. The receiver cannot
// be used for receiving afterwards; registration calls keep working.
func (r *Receiver[T]) Stream() (*Stream[T], error) {
	if !r.consumed.CompareAndSwap(false, true) {
		return nil, api.ErrReceiverConsumed
	}
	return &Stream[T]{rx: r}, nil
}

// Register makes the receiver's readiness observable through sel.
func (r *Receiver[T]) Register(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	return r.ctl.Register(sel, token, interest, opts)
}

// Reregister updates the registration with sel.
func (r *Receiver[T]) Reregister(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	return r.ctl.Reregister(sel, token, interest, opts)
}

// Deregister removes the receiver from sel.
func (r *Receiver[T]) Deregister(sel api.Selector) error {
	return r.ctl.Deregister(sel)
}

// Fd returns the descriptor that turns readable while values may be waiting.
func (r *Receiver[T]) Fd() uintptr { return r.ctl.Fd() }

// Len returns the number of values waiting in the buffer.
func (r *Receiver[T]) Len() int { return r.c.ring.Len() }

// Cap returns the buffer capacity.
func (r *Receiver[T]) Cap() int { return r.c.ring.Cap() }

// Stats returns counters for the whole pump.
func (r *Receiver[T]) Stats() Stats { return r.c.stats(r.ctl.Pending()) }

// Close releases the receiving end. A sender blocked on a full buffer
// gives up with api.ErrClosed. Idempotent.
func (r *Receiver[T]) Close() error {
	r.c.rxClosed.Store(true)
	return r.ctl.Close()
}
