// File: fake/fakereactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-pump/api"
)

// Registration is one live registration held by Reactor.
type Registration struct {
	Fd       uintptr
	Token    api.Token
	Interest api.Interest
	Opts     api.PollOpt
}

// Call records one Selector invocation.
type Call struct {
	Op string // "register", "reregister" or "deregister"
	Registration
}

// Reactor is an in-memory api.Reactor for tests. It records every
// registration call, can be told to fail them, and returns events that
// tests inject by hand.
type Reactor struct {
	mu     sync.Mutex
	regs   map[uintptr]Registration
	calls  []Call
	events *queue.Queue
	wake   chan struct{}
	closed bool

	// Errors returned by the matching Selector method when set.
	RegisterErr   error
	ReregisterErr error
	DeregisterErr error
}

var _ api.Reactor = (*Reactor)(nil)

// NewReactor returns an empty fake reactor.
func NewReactor() *Reactor {
	return &Reactor{
		regs:   make(map[uintptr]Registration),
		events: queue.New(),
		wake:   make(chan struct{}, 1),
	}
}

func (r *Reactor) Register(fd uintptr, token api.Token, interest api.Interest, opts api.PollOpt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg := Registration{Fd: fd, Token: token, Interest: interest, Opts: opts}
	r.calls = append(r.calls, Call{Op: "register", Registration: reg})
	if r.RegisterErr != nil {
		return r.RegisterErr
	}
	if _, ok := r.regs[fd]; ok {
		return api.NewError(api.ErrCodeRegistration, "fake: fd already registered").Wrap(api.ErrInvalidArgument)
	}
	r.regs[fd] = reg
	return nil
}

func (r *Reactor) Reregister(fd uintptr, token api.Token, interest api.Interest, opts api.PollOpt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg := Registration{Fd: fd, Token: token, Interest: interest, Opts: opts}
	r.calls = append(r.calls, Call{Op: "reregister", Registration: reg})
	if r.ReregisterErr != nil {
		return r.ReregisterErr
	}
	if _, ok := r.regs[fd]; !ok {
		return api.ErrNotFound
	}
	r.regs[fd] = reg
	return nil
}

func (r *Reactor) Deregister(fd uintptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "deregister", Registration: Registration{Fd: fd}})
	if r.DeregisterErr != nil {
		return r.DeregisterErr
	}
	if _, ok := r.regs[fd]; !ok {
		return api.ErrNotFound
	}
	delete(r.regs, fd)
	return nil
}

// Calls returns a copy of the recorded calls in order.
func (r *Reactor) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Registered returns the live registration for fd.
func (r *Reactor) Registered(fd uintptr) (Registration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[fd]
	return reg, ok
}

// Inject queues an event for the next Wait.
func (r *Reactor) Inject(ev api.Event) {
	r.mu.Lock()
	r.events.Add(ev)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Fire injects a readable event for the registration of fd.
// It reports false if fd is not registered.
func (r *Reactor) Fire(fd uintptr) bool {
	reg, ok := r.Registered(fd)
	if !ok {
		return false
	}
	r.Inject(api.Event{Token: reg.Token, Readiness: api.Readable})
	return true
}

// Wait returns injected events, blocking up to timeout when none are queued.
func (r *Reactor) Wait(events []api.Event, timeout time.Duration) (int, error) {
	if n, err := r.take(events); n > 0 || err != nil {
		return n, err
	}
	if timeout == 0 {
		return 0, nil
	}
	var after <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		after = t.C
	}
	select {
	case <-r.wake:
	case <-after:
	}
	return r.take(events)
}

func (r *Reactor) take(events []api.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, api.ErrClosed
	}
	n := 0
	for n < len(events) && r.events.Length() > 0 {
		events[n] = r.events.Remove().(api.Event)
		n++
	}
	return n, nil
}

// Close marks the reactor closed; later Waits fail.
func (r *Reactor) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}
