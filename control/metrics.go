// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Counter registry the event loop publishes into. Values are unsigned
// counters or gauges keyed by dotted names such as "loop.delivered".

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-pump/api"
)

var _ api.Metrics = (*MetricsRegistry)(nil)

// MetricsRegistry holds the latest value of every published counter.
type MetricsRegistry struct {
	mu      sync.RWMutex
	values  map[string]uint64
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{values: make(map[string]uint64)}
}

// Set records the current value of key.
func (mr *MetricsRegistry) Set(key string, value uint64) {
	mr.mu.Lock()
	mr.values[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Delete drops key.
func (mr *MetricsRegistry) Delete(key string) {
	mr.mu.Lock()
	delete(mr.values, key)
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns the value recorded for key.
func (mr *MetricsRegistry) Get(key string) (uint64, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, ok := mr.values[key]
	return v, ok
}

// GetSnapshot returns a copy of every recorded value.
func (mr *MetricsRegistry) GetSnapshot() map[string]uint64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]uint64, len(mr.values))
	for k, v := range mr.values {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last change, zero if none.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
