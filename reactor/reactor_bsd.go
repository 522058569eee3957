//go:build darwin || dragonfly || freebsd || netbsd || openbsd
// +build darwin dragonfly freebsd netbsd openbsd

// File: reactor/reactor_bsd.go
// Author: momentics <momentics@gmail.com>
//
// kqueue(2)-based reactor implementation.

package reactor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-pump/api"
)

// Poller is a kqueue-based event reactor.
type Poller struct {
	kq     int
	tokens sync.Map // map[uintptr]api.Token
	raw    []unix.Kevent_t
}

var _ api.Reactor = (*Poller)(nil)

// NewPoller creates a new kqueue instance.
func NewPoller() (*Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue create: %w", err)
	}
	unix.CloseOnExec(kq)
	return &Poller{kq: kq}, nil
}

func (p *Poller) apply(fd uintptr, interest api.Interest, opts api.PollOpt) error {
	flags := unix.EV_ADD | unix.EV_ENABLE
	if opts&api.Edge != 0 {
		flags |= unix.EV_CLEAR
	}
	if opts&api.Oneshot != 0 {
		flags |= unix.EV_ONESHOT
	}
	var changes []unix.Kevent_t
	var dels []unix.Kevent_t
	for _, f := range []struct {
		want   bool
		filter int
	}{
		{interest.IsReadable(), unix.EVFILT_READ},
		{interest.IsWritable(), unix.EVFILT_WRITE},
	} {
		var k unix.Kevent_t
		if f.want {
			unix.SetKevent(&k, int(fd), f.filter, flags)
			changes = append(changes, k)
		} else {
			unix.SetKevent(&k, int(fd), f.filter, unix.EV_DELETE)
			dels = append(dels, k)
		}
	}
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
			return err
		}
	}
	for i := range dels {
		if _, err := unix.Kevent(p.kq, dels[i:i+1], nil, nil); err != nil && !errors.Is(err, unix.ENOENT) {
			return err
		}
	}
	return nil
}

// Register adds a file descriptor to the kqueue watch list.
func (p *Poller) Register(fd uintptr, token api.Token, interest api.Interest, opts api.PollOpt) error {
	if _, loaded := p.tokens.LoadOrStore(fd, token); loaded {
		return fmt.Errorf("kqueue add: %w", unix.EEXIST)
	}
	if err := p.apply(fd, interest, opts); err != nil {
		p.tokens.Delete(fd)
		return fmt.Errorf("kqueue add: %w", err)
	}
	return nil
}

// Reregister modifies an existing registration.
func (p *Poller) Reregister(fd uintptr, token api.Token, interest api.Interest, opts api.PollOpt) error {
	if _, ok := p.tokens.Load(fd); !ok {
		return fmt.Errorf("kqueue mod: %w", unix.ENOENT)
	}
	p.tokens.Store(fd, token)
	if err := p.apply(fd, interest, opts); err != nil {
		return fmt.Errorf("kqueue mod: %w", err)
	}
	return nil
}

// Deregister removes a file descriptor from the kqueue watch list.
func (p *Poller) Deregister(fd uintptr) error {
	if _, ok := p.tokens.LoadAndDelete(fd); !ok {
		return fmt.Errorf("kqueue del: %w", unix.ENOENT)
	}
	if err := p.apply(fd, 0, 0); err != nil {
		return fmt.Errorf("kqueue del: %w", err)
	}
	return nil
}

// Wait blocks up to timeout and fills events, which must not be empty.
func (p *Poller) Wait(events []api.Event, timeout time.Duration) (int, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("reactor: wait with no room for events: %w", api.ErrInvalidArgument)
	}
	if cap(p.raw) < len(events) {
		p.raw = make([]unix.Kevent_t, len(events))
	}
	raw := p.raw[:len(events)]

	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}
	n, err := unix.Kevent(p.kq, nil, raw, ts)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("kevent wait: %w", err)
	}
	out := 0
	for i := 0; i < n; i++ {
		v, ok := p.tokens.Load(uintptr(raw[i].Ident))
		if !ok {
			continue
		}
		var ready api.Interest
		switch raw[i].Filter {
		case unix.EVFILT_READ:
			ready |= api.Readable
		case unix.EVFILT_WRITE:
			ready |= api.Writable
		}
		if raw[i].Flags&unix.EV_EOF != 0 {
			ready |= api.Hangup
		}
		if raw[i].Flags&unix.EV_ERROR != 0 {
			ready |= api.Failure
		}
		events[out] = api.Event{Token: v.(api.Token), Readiness: ready}
		out++
	}
	return out, nil
}

// Close closes the kqueue instance.
func (p *Poller) Close() error {
	return unix.Close(p.kq)
}
