// File: internal/concurrency/backoff.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Adaptive backoff for spin-wait loops.

package concurrency

import (
	"runtime"
	"time"
)

const (
	spinRounds  = 64
	yieldRounds = 1024
	maxSleep    = time.Millisecond
)

// Backoff escalates from busy spinning to scheduler yields to short sleeps.
// The zero value is ready to use. Not safe for concurrent use.
type Backoff struct {
	n     int
	sleep time.Duration
}

// Wait performs one backoff step.
func (b *Backoff) Wait() {
	b.n++
	switch {
	case b.n <= spinRounds:
		// busy spin
	case b.n <= yieldRounds:
		runtime.Gosched()
	default:
		if b.sleep == 0 {
			b.sleep = time.Microsecond
		}
		time.Sleep(b.sleep)
		b.sleep *= 2
		if b.sleep > maxSleep {
			b.sleep = maxSleep
		}
	}
}

// Reset returns the backoff to the busy-spin phase.
func (b *Backoff) Reset() {
	b.n = 0
	b.sleep = 0
}
