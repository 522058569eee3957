// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration, metrics and debug introspection for hioload-pump.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads, typed getters and reload listeners
//   - A metrics registry the event loop publishes its counters into
//   - Debug probe registration and state export
package control
