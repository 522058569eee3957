// Package api
// Author: momentics@gmail.com
//
// Generic results of cooperative, non-blocking polls.

package api

// PollState is the outcome of one non-blocking poll.
type PollState uint8

const (
	// NotReady means nothing is available yet; poll again after readiness fires.
	NotReady PollState = iota
	// Ready means Value holds the next item.
	Ready
	// Done means the sequence has ended and will never yield again.
	Done
)

func (s PollState) String() string {
	switch s {
	case NotReady:
		return "not-ready"
	case Ready:
		return "ready"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Async is the result of polling a lazy sequence.
type Async[T any] struct {
	State PollState
	Value T
}

// ReadyValue builds a Ready result.
func ReadyValue[T any](v T) Async[T] {
	return Async[T]{State: Ready, Value: v}
}

// IsReady reports whether a value was produced.
func (a Async[T]) IsReady() bool { return a.State == Ready }
