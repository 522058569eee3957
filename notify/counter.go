// File: notify/counter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package notify

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/momentics/hioload-pump/api"
)

// DefaultLimit bounds the number of notifications pending at once.
const DefaultLimit = math.MaxUint32

type options struct {
	limit uint64
}

// Option configures a pair at construction.
type Option func(*options)

// WithLimit overrides the pending-notification bound.
func WithLimit(n uint64) Option {
	return func(o *options) { o.limit = n }
}

// counter is the state shared by both ends of a pair.
type counter struct {
	rfd, wfd int
	limit    uint64
	pending  atomic.Uint64
	refs     atomic.Int32
}

func (c *counter) release() error {
	if c.refs.Add(-1) != 0 {
		return nil
	}
	return closeFds(c.rfd, c.wfd)
}

// NewPair creates a connected Notifier/Listener pair.
func NewPair(opts ...Option) (*Notifier, *Listener, error) {
	o := options{limit: DefaultLimit}
	for _, fn := range opts {
		fn(&o)
	}
	if o.limit == 0 {
		return nil, nil, fmt.Errorf("notify: zero limit: %w", api.ErrInvalidArgument)
	}
	rfd, wfd, err := openFds()
	if err != nil {
		return nil, nil, fmt.Errorf("notify: open: %w", err)
	}
	c := &counter{rfd: rfd, wfd: wfd, limit: o.limit}
	c.refs.Store(2)
	return &Notifier{c: c}, &Listener{c: c}, nil
}

// Notifier is the producer side of a pair.
type Notifier struct {
	c      *counter
	closed atomic.Bool
}

// Increment records one more pending notification and makes the
// listener's descriptor readable. It never blocks. It fails with
// api.ErrNotificationSaturated once the bound is reached; nothing is
// recorded in that case.
func (n *Notifier) Increment() error {
	if n.closed.Load() {
		return api.ErrClosed
	}
	c := n.c
	for {
		p := c.pending.Load()
		if p >= c.limit {
			return api.ErrNotificationSaturated
		}
		if c.pending.CompareAndSwap(p, p+1) {
			break
		}
	}
	if err := signal(c.wfd); err != nil {
		c.pending.Add(^uint64(0))
		return err
	}
	return nil
}

// Close releases the producer side.
func (n *Notifier) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	return n.c.release()
}

// Listener is the consumer side of a pair.
type Listener struct {
	c      *counter
	closed atomic.Bool
}

var _ api.Evented = (*Listener)(nil)

// Fd returns the descriptor that becomes readable while notifications are pending.
func (l *Listener) Fd() uintptr { return uintptr(l.c.rfd) }

// Pending returns the number of notifications recorded and not yet reset.
func (l *Listener) Pending() uint64 { return l.c.pending.Load() }

// Reset consumes every pending notification and returns how many there were.
// The descriptor stops being readable until the next Increment.
func (l *Listener) Reset() (uint64, error) {
	if l.closed.Load() {
		return 0, api.ErrClosed
	}
	n, err := drain(l.c.rfd)
	if n > 0 {
		l.c.pending.Add(^(n - 1))
	}
	return n, err
}

// Register delegates to sel with the listener's descriptor.
func (l *Listener) Register(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	if l.closed.Load() {
		return api.ErrClosed
	}
	return sel.Register(l.Fd(), token, interest, opts)
}

// Reregister delegates to sel with the listener's descriptor.
func (l *Listener) Reregister(sel api.Selector, token api.Token, interest api.Interest, opts api.PollOpt) error {
	if l.closed.Load() {
		return api.ErrClosed
	}
	return sel.Reregister(l.Fd(), token, interest, opts)
}

// Deregister delegates to sel with the listener's descriptor.
func (l *Listener) Deregister(sel api.Selector) error {
	if l.closed.Load() {
		return api.ErrClosed
	}
	return sel.Deregister(l.Fd())
}

// Close releases the consumer side.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.c.release()
}
