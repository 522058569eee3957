// File: internal/concurrency/ring.go
// Package concurrency implements lock-free ring buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RingBuffer is a bounded circular buffer with atomic head/tail,
// padded to prevent false sharing. Exactly one goroutine may push and
// exactly one goroutine may pop.

package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-pump/api"
)

// Ensure compile-time interface compliance.
var _ api.Ring[any] = (*RingBuffer[any])(nil)

// RingBuffer is a lock-free single-producer/single-consumer ring buffer.
//
// head is only advanced by the consumer and tail only by the producer.
// The producer writes the slot before publishing tail; the consumer loads
// tail before reading the slot, so an observed tail always covers a fully
// written slot. The same holds in reverse for head and slot reuse.
type RingBuffer[T any] struct {
	_          cpu.CacheLinePad
	head       atomic.Uint64 // consumer index
	cachedTail uint64        // consumer's last view of tail
	_          cpu.CacheLinePad
	tail       atomic.Uint64 // producer index
	cachedHead uint64        // producer's last view of head
	_          cpu.CacheLinePad
	data       []T
	size       uint64
}

// NewRingBuffer allocates a ring buffer holding exactly capacity items.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		panic("ring capacity must be positive")
	}
	return &RingBuffer[T]{
		data: make([]T, capacity),
		size: uint64(capacity),
	}
}

// Push adds item, waiting for the consumer to free a slot when full.
// It never drops or overwrites data.
func (r *RingBuffer[T]) Push(item T) {
	r.PushUntil(item, nil)
}

// PushUntil is Push with an escape hatch: while the ring is full, stop is
// polled between attempts and PushUntil gives up once it reports true.
// Returns whether item was stored. A nil stop waits forever.
func (r *RingBuffer[T]) PushUntil(item T, stop func() bool) bool {
	if r.TryPush(item) {
		return true
	}
	var b Backoff
	for !r.TryPush(item) {
		if stop != nil && stop() {
			return false
		}
		b.Wait()
	}
	return true
}

// TryPush adds item; returns false if full.
func (r *RingBuffer[T]) TryPush(item T) bool {
	tail := r.tail.Load()
	if tail-r.cachedHead >= r.size {
		r.cachedHead = r.head.Load()
		if tail-r.cachedHead >= r.size {
			return false
		}
	}
	r.data[tail%r.size] = item
	r.tail.Store(tail + 1)
	return true
}

// TryPop removes and returns the oldest item; ok false if empty.
func (r *RingBuffer[T]) TryPop() (item T, ok bool) {
	head := r.head.Load()
	if head >= r.cachedTail {
		r.cachedTail = r.tail.Load()
		if head >= r.cachedTail {
			return item, false
		}
	}
	idx := head % r.size
	item = r.data[idx]
	var zero T
	r.data[idx] = zero
	r.head.Store(head + 1)
	return item, true
}

// Len returns number of items currently in buffer.
// The result is a snapshot and may be stale by the time it is used.
func (r *RingBuffer[T]) Len() int {
	head := r.head.Load()
	tail := r.tail.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// Cap returns fixed buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return int(r.size)
}
