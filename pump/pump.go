// File: pump/pump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pump

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/internal/concurrency"
	"github.com/momentics/hioload-pump/notify"
)

type config struct {
	notifyLimit uint64
}

// Option configures a pump at construction.
type Option func(*config)

// WithNotifyLimit bounds how many notifications may be pending at once.
// Sends past the bound fail with api.ErrNotificationSaturated.
func WithNotifyLimit(n uint64) Option {
	return func(c *config) { c.notifyLimit = n }
}

// Stats is a point-in-time snapshot of a pump.
type Stats struct {
	Sent      uint64 // values committed to the buffer
	Received  uint64 // values handed to the consumer
	Saturated uint64 // sends whose notification failed
	Resets    uint64 // counter resets done on empty
	Pending   uint64 // notifications not yet reset
	Len       int
	Cap       int
}

// core is shared by the two ends of one pump.
type core[T any] struct {
	ring     *concurrency.RingBuffer[T]
	closed   atomic.Bool // sender side gone
	rxClosed atomic.Bool // receiver side gone

	sent      atomic.Uint64
	received  atomic.Uint64
	saturated atomic.Uint64
	resets    atomic.Uint64
}

// New creates a pump holding up to capacity values and returns its two ends.
func New[T any](capacity int, opts ...Option) (*Sender[T], *Receiver[T], error) {
	if capacity <= 0 {
		return nil, nil, fmt.Errorf("pump: capacity %d: %w", capacity, api.ErrInvalidArgument)
	}
	cfg := config{notifyLimit: notify.DefaultLimit}
	for _, fn := range opts {
		fn(&cfg)
	}
	n, l, err := notify.NewPair(notify.WithLimit(cfg.notifyLimit))
	if err != nil {
		return nil, nil, fmt.Errorf("pump: %w", err)
	}
	c := &core[T]{ring: concurrency.NewRingBuffer[T](capacity)}
	return &Sender[T]{c: c, ctl: n}, &Receiver[T]{c: c, ctl: l}, nil
}

func (c *core[T]) stats(pending uint64) Stats {
	return Stats{
		Sent:      c.sent.Load(),
		Received:  c.received.Load(),
		Saturated: c.saturated.Load(),
		Resets:    c.resets.Load(),
		Pending:   pending,
		Len:       c.ring.Len(),
		Cap:       c.ring.Cap(),
	}
}
