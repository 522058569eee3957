//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

// File: notify/counter_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package notify

import "github.com/momentics/hioload-pump/api"

func openFds() (int, int, error) { return -1, -1, api.ErrNotSupported }

func signal(int) error { return api.ErrNotSupported }

func drain(int) (uint64, error) { return 0, api.ErrNotSupported }

func closeFds(int, int) error { return nil }
