// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and hot-reload propagation.

package control

import (
	"strconv"
	"sync"
	"time"
)

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]func(), 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// Get returns the raw value stored under key.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	return v, ok
}

// GetInt returns key as an int, or def when missing or not numeric.
// Strings are parsed so values loaded from flags or env files work.
func (cs *ConfigStore) GetInt(key string, def int) int {
	v, ok := cs.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// GetDuration returns key as a time.Duration, or def when missing or
// malformed. Integers are taken as milliseconds, strings go through
// time.ParseDuration.
func (cs *ConfigStore) GetDuration(key string, def time.Duration) time.Duration {
	v, ok := cs.Get(key)
	if !ok {
		return def
	}
	switch d := v.(type) {
	case time.Duration:
		return d
	case int:
		return time.Duration(d) * time.Millisecond
	case int64:
		return time.Duration(d) * time.Millisecond
	case string:
		if p, err := time.ParseDuration(d); err == nil {
			return p
		}
	}
	return def
}

// SetConfig merges new values and dispatches reload listeners asynchronously.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.merge(newCfg)
	for _, fn := range cs.listeners {
		go fn()
	}
}

// SetConfigSync merges new values and runs reload listeners before returning.
func (cs *ConfigStore) SetConfigSync(newCfg map[string]any) {
	cs.mu.Lock()
	cs.merge(newCfg)
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (cs *ConfigStore) merge(newCfg map[string]any) {
	for k, v := range newCfg {
		cs.config[k] = v
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
