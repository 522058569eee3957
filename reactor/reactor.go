// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral pieces of the readiness reactor.

package reactor

import (
	"time"

	"github.com/momentics/hioload-pump/api"
)

// New constructs the platform reactor.
func New() (api.Reactor, error) {
	p, err := NewPoller()
	if err != nil {
		return nil, err
	}
	return p, nil
}

// timeoutMillis converts a Wait timeout to the millisecond form used by
// epoll_wait. Negative means infinite; sub-millisecond waits round up so
// they do not degrade into a busy poll.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
