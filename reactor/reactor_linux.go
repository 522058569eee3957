//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation.

package reactor

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-pump/api"
)

// Poller is an epoll-based event reactor.
type Poller struct {
	epfd int
	raw  []unix.EpollEvent
}

var _ api.Reactor = (*Poller)(nil)

// NewPoller creates a new epoll instance.
func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &Poller{epfd: epfd}, nil
}

// epollEvent builds the kernel event; the token travels in the 64-bit
// user-data word (Fd holds the low half, Pad the high half).
func epollEvent(token api.Token, interest api.Interest, opts api.PollOpt) unix.EpollEvent {
	var ev unix.EpollEvent
	if interest.IsReadable() {
		ev.Events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest.IsWritable() {
		ev.Events |= unix.EPOLLOUT
	}
	if opts&api.Edge != 0 {
		ev.Events |= unix.EPOLLET
	}
	if opts&api.Oneshot != 0 {
		ev.Events |= unix.EPOLLONESHOT
	}
	t := uint64(token)
	ev.Fd = int32(uint32(t))
	ev.Pad = int32(uint32(t >> 32))
	return ev
}

func eventToken(ev *unix.EpollEvent) api.Token {
	return api.Token(uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32)
}

// Register adds a file descriptor to the epoll watch list.
func (p *Poller) Register(fd uintptr, token api.Token, interest api.Interest, opts api.PollOpt) error {
	ev := epollEvent(token, interest, opts)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Reregister modifies an existing registration.
func (p *Poller) Reregister(fd uintptr, token api.Token, interest api.Interest, opts api.PollOpt) error {
	ev := epollEvent(token, interest, opts)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

// Deregister removes a file descriptor from the epoll watch list.
func (p *Poller) Deregister(fd uintptr) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks up to timeout and fills events, which must not be empty.
func (p *Poller) Wait(events []api.Event, timeout time.Duration) (int, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("reactor: wait with no room for events: %w", api.ErrInvalidArgument)
	}
	if cap(p.raw) < len(events) {
		p.raw = make([]unix.EpollEvent, len(events))
	}
	raw := p.raw[:len(events)]

	n, err := unix.EpollWait(p.epfd, raw, timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		var ready api.Interest
		if raw[i].Events&unix.EPOLLIN != 0 {
			ready |= api.Readable
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			ready |= api.Writable
		}
		if raw[i].Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
			ready |= api.Hangup
		}
		if raw[i].Events&unix.EPOLLERR != 0 {
			ready |= api.Failure
		}
		events[i] = api.Event{Token: eventToken(&raw[i]), Readiness: ready}
	}
	return n, nil
}

// Close closes the epoll instance.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}
