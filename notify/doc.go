// File: notify/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package notify implements a cross-goroutine readiness counter whose
// consumer side is a real OS descriptor, so it can be registered with
// epoll or kqueue and wake a parked event loop.
//
// A pair is created with NewPair. The Notifier is held by the producer and
// only ever increments. The Listener is held by the consumer; it registers
// with a multiplexer and consumes pending notifications with Reset.
//
// The count is a wake-up hint, not an item count. Consumers must drain
// their data source until empty whenever they are woken.
//
// Backends: eventfd(2) on Linux, a non-blocking self-pipe on the BSDs and
// Darwin. Other platforms return api.ErrNotSupported.
package notify
