// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for readiness-based reactors
// (epoll, kqueue) used to park a consumer until a pump has data.

package api

import "time"

// Event encapsulates the result of an OS-level readiness notification.
type Event struct {
	Token     Token    // token supplied at registration
	Readiness Interest // what was reported ready
}

// Reactor is a Selector that can also wait for events.
type Reactor interface {
	Selector

	// Wait blocks until at least one event is available or the timeout
	// elapses, and fills events. A negative timeout blocks indefinitely.
	// Returns the number of events written. An empty events slice is
	// rejected with ErrInvalidArgument.
	Wait(events []Event, timeout time.Duration) (int, error)

	// Close releases the underlying poller.
	Close() error
}
