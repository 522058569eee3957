// Package api
// Author: momentics
//
// Readiness registration contracts between pollable objects and a multiplexer.

package api

// Token identifies a registration inside a Selector. It is chosen by the
// caller and echoed back in every Event for that registration.
type Token uintptr

// Interest is the readiness set a registration asks for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
	// Hangup is only ever reported, never requested.
	Hangup
	// Failure is only ever reported, never requested.
	Failure
)

// IsReadable reports whether the readable bit is set.
func (i Interest) IsReadable() bool { return i&Readable != 0 }

// IsWritable reports whether the writable bit is set.
func (i Interest) IsWritable() bool { return i&Writable != 0 }

func (i Interest) String() string {
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if i&Readable != 0 {
		add("readable")
	}
	if i&Writable != 0 {
		add("writable")
	}
	if i&Hangup != 0 {
		add("hangup")
	}
	if i&Failure != 0 {
		add("error")
	}
	if s == "" {
		return "none"
	}
	return s
}

// PollOpt selects trigger semantics for a registration.
type PollOpt uint8

const (
	// Level reports readiness for as long as the condition holds.
	Level PollOpt = 0
	// Edge reports readiness once per state change.
	Edge PollOpt = 1
	// Oneshot disables the registration after the first event until Reregister.
	Oneshot PollOpt = 2
)

// Selector is the registration side of an OS-level multiplexer.
type Selector interface {
	// Register starts watching fd.
	Register(fd uintptr, token Token, interest Interest, opts PollOpt) error
	// Reregister replaces token, interest and options of an existing registration.
	Reregister(fd uintptr, token Token, interest Interest, opts PollOpt) error
	// Deregister stops watching fd.
	Deregister(fd uintptr) error
}

// Evented is anything that can be registered with a Selector.
// Implementations delegate to an underlying descriptor and keep no
// token or interest state of their own.
type Evented interface {
	Register(sel Selector, token Token, interest Interest, opts PollOpt) error
	Reregister(sel Selector, token Token, interest Interest, opts PollOpt) error
	Deregister(sel Selector) error
}
