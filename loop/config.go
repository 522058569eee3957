// File: loop/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package loop

import (
	"time"

	"github.com/momentics/hioload-pump/api"
	"github.com/momentics/hioload-pump/control"
)

// Config keys read by ConfigFromStore.
const (
	KeyMaxEvents   = "loop.max_events"
	KeyPollTimeout = "loop.poll_timeout"
	KeyBatchSize   = "loop.batch_size"
	KeyCPU         = "loop.cpu"
)

// Config holds loop parameters.
type Config struct {
	MaxEvents   int           // events fetched per reactor wait
	PollTimeout time.Duration // upper bound on one reactor wait
	BatchSize   int           // values delivered per stream before yielding
	Pin         bool          // pin the loop thread to CPU while Run executes
	CPU         int           // logical CPU used when Pin is set

	Metrics api.Metrics // optional counter sink
	Debug   api.Debug   // optional probe registry
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		MaxEvents:   128,
		PollTimeout: 100 * time.Millisecond,
		BatchSize:   64,
	}
}

// ConfigFromStore reads loop settings from cs, falling back to defaults.
// A non-negative loop.cpu turns pinning on.
func ConfigFromStore(cs *control.ConfigStore) Config {
	def := DefaultConfig()
	cfg := Config{
		MaxEvents:   cs.GetInt(KeyMaxEvents, def.MaxEvents),
		PollTimeout: cs.GetDuration(KeyPollTimeout, def.PollTimeout),
		BatchSize:   cs.GetInt(KeyBatchSize, def.BatchSize),
	}
	if cpu := cs.GetInt(KeyCPU, -1); cpu >= 0 {
		cfg.Pin = true
		cfg.CPU = cpu
	}
	return cfg
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.MaxEvents <= 0 {
		c.MaxEvents = def.MaxEvents
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = def.PollTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
}
