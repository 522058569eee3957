//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"time"

	"github.com/momentics/hioload-pump/api"
)

// Poller is unavailable on this platform.
type Poller struct{}

// NewPoller returns an error for unsupported platforms.
func NewPoller() (*Poller, error) {
	return nil, api.ErrNotSupported
}

func (p *Poller) Register(uintptr, api.Token, api.Interest, api.PollOpt) error {
	return api.ErrNotSupported
}

func (p *Poller) Reregister(uintptr, api.Token, api.Interest, api.PollOpt) error {
	return api.ErrNotSupported
}

func (p *Poller) Deregister(uintptr) error { return api.ErrNotSupported }

func (p *Poller) Wait([]api.Event, time.Duration) (int, error) {
	return 0, api.ErrNotSupported
}

func (p *Poller) Close() error { return nil }
