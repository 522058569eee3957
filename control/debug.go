// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes evaluated on demand for live inspection of loops and pumps.

package control

import (
	"sync"

	"github.com/momentics/hioload-pump/api"
)

var _ api.Debug = (*DebugProbes)(nil)

// DebugProbes is a registry of probe functions keyed by name.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates an empty probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]func() any)}
}

// RegisterProbe installs fn under name, replacing any previous probe.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	dp.probes[name] = fn
	dp.mu.Unlock()
}

// UnregisterProbe removes the probe registered under name.
func (dp *DebugProbes) UnregisterProbe(name string) {
	dp.mu.Lock()
	delete(dp.probes, name)
	dp.mu.Unlock()
}

// DumpState evaluates every probe and returns the results by name.
// Probes run without the registry lock held, so a probe may itself
// register or remove probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	probes := make(map[string]func() any, len(dp.probes))
	for k, fn := range dp.probes {
		probes[k] = fn
	}
	dp.mu.RUnlock()

	out := make(map[string]any, len(probes))
	for k, fn := range probes {
		out[k] = fn()
	}
	return out
}
