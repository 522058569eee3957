// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides poll-mode readiness multiplexers implementing
// api.Reactor: epoll on Linux and kqueue on the BSDs and Darwin.
//
// A Poller is safe for concurrent Register/Reregister/Deregister calls,
// but only one goroutine may Wait at a time.
package reactor
