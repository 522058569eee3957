// File: loop/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package loop is a single-goroutine cooperative scheduler for pump
// streams. Streams are registered with a readiness reactor; whenever one
// turns readable the loop polls it until it reports not-ready, handing
// each value to the stream's handler. Streams that end are deregistered.
//
// Handlers run on the loop goroutine and must not block. In particular a
// handler must never Send into a pump whose receiver the same loop drives.
package loop
