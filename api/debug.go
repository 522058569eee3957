// Package api
// Author: momentics
//
// Live debug and contract validation support for production workloads.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState emits a snapshot of system state for diagnostics.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)

	// UnregisterProbe removes a probe registered under name.
	UnregisterProbe(name string)
}

// Metrics receives runtime counters.
type Metrics interface {
	// Set records the current value of a named counter.
	Set(key string, value uint64)
}
