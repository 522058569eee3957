//go:build linux
// +build linux

// File: notify/counter_linux.go
// Author: momentics <momentics@gmail.com>
//
// eventfd(2) backend. A single descriptor serves both ends; the kernel
// keeps the 64-bit count.

package notify

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-pump/api"
)

func openFds() (int, int, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return -1, -1, fmt.Errorf("eventfd: %w", err)
	}
	return fd, fd, nil
}

func signal(fd int) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
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
			return fmt.Errorf("eventfd write: %w", err)
		}
	}
}

func drain(fd int) (uint64, error) {
	var buf [8]byte
	for {
		_, err := unix.Read(fd, buf[:])
		switch {
		case err == nil:
			return binary.NativeEndian.Uint64(buf[:]), nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, nil
		default:
			return 0, fmt.Errorf("eventfd read: %w", err)
		}
	}
}

func closeFds(rfd, _ int) error {
	return unix.Close(rfd)
}
