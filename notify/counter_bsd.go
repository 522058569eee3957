//go:build darwin || dragonfly || freebsd || netbsd || openbsd
// +build darwin dragonfly freebsd netbsd openbsd

// File: notify/counter_bsd.go
// Author: momentics <momentics@gmail.com>
//
// Self-pipe backend. Every increment writes one byte; the pipe's
// capacity is the OS-side bound.

package notify

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-pump/api"
)

func openFds() (int, int, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return -1, -1, fmt.Errorf("pipe: %w", err)
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return -1, -1, fmt.Errorf("pipe nonblock: %w", err)
		}
	}
	return p[0], p[1], nil
}

func signal(fd int) error {
	buf := [1]byte{1}
	for {
		_, err := unix.Write(fd, buf[:])
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return api.ErrNotificationSaturated
		default:
			return fmt.Errorf("pipe write: %w", err)
		}
	}
}

func drain(fd int) (uint64, error) {
	var buf [512]byte
	var total uint64
	for {
		n, err := unix.Read(fd, buf[:])
		switch {
		case err == nil && n > 0:
			total += uint64(n)
			continue
		case err == nil:
			return total, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return total, nil
		default:
			return total, fmt.Errorf("pipe read: %w", err)
		}
	}
}

func closeFds(rfd, wfd int) error {
	err := unix.Close(wfd)
	if cerr := unix.Close(rfd); err == nil {
		err = cerr
	}
	return err
}
