// File: pump/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package pump provides a bounded single-producer/single-consumer channel
// whose receiving side can be registered with a readiness multiplexer
// (epoll, kqueue), so a consumer can park in its event loop instead of
// spinning.
//
// A pump is one lock-free ring buffer plus one readiness counter. Send
// stores the value and then increments the counter; the counter's
// descriptor becomes readable and wakes whoever waits on it.
//
// Correctness contract: readiness is a hint, never an item count. After
// every wakeup the consumer calls Recv (or Stream.Poll) until it reports
// empty. Whenever Recv finds the buffer empty with notifications pending,
// it resets the counter and checks the buffer once more, so the counter
// cannot grow without bound and a send racing with the reset still leaves
// the descriptor readable.
//
// Exactly one goroutine may use the Sender and exactly one goroutine may
// use the Receiver. Send blocks while the buffer is full, so producer and
// consumer must not share a goroutine.
package pump
