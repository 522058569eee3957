// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free primitives for hioload-pump: the bounded single-producer/
// single-consumer ring that backs every pump, and the adaptive backoff
// used when the producer has to wait for a free slot.
package concurrency
