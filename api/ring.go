// Package api
// Author: momentics@gmail.com
//
// Lock-free ring buffer for cross-goroutine producer/consumer.

package api

// Ring is a bounded single-producer/single-consumer ring buffer contract.
type Ring[T any] interface {
	// Push adds an item, waiting for a free slot when full.
	Push(item T)
	// TryPush adds an item, returns false if full.
	TryPush(item T) bool
	// TryPop removes the oldest item, returns false if empty.
	TryPop() (T, bool)
	// Len returns current number of items.
	Len() int
	// Cap returns buffer capacity.
	Cap() int
}
