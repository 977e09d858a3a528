package dispatchers

import (
	"fmt"

	"github.com/tailored-agentic-units/statekit/observability"
)

// MainConfig configures the sequenced main dispatcher.
type MainConfig struct {
	// QueueSize bounds pending functions; Dispatch blocks when full.
	QueueSize int `json:"queue_size"`
}

// PoolConfig configures a goroutine pool dispatcher.
//
// Worker sizing:
//   - MaxWorkers = 0: max(NumCPU, 2)
//   - MaxWorkers > 0: exact count
//
// RateLimit is the sustained number of function starts per second; zero
// disables limiting. RateBurst defaults to 1 when a limit is set.
type PoolConfig struct {
	MaxWorkers int     `json:"max_workers"`
	RateLimit  float64 `json:"rate_limit"`
	RateBurst  int     `json:"rate_burst"`
}

func (c *PoolConfig) Merge(source *PoolConfig) {
	if source.MaxWorkers > 0 {
		c.MaxWorkers = source.MaxWorkers
	}

	if source.RateLimit > 0 {
		c.RateLimit = source.RateLimit
	}

	if source.RateBurst > 0 {
		c.RateBurst = source.RateBurst
	}
}

// Config defines the reference dispatcher set built by New.
//
// Example JSON:
//
//	{
//	  "main": {"queue_size": 256},
//	  "default": {"max_workers": 0},
//	  "io": {"max_workers": 64, "rate_limit": 50, "rate_burst": 10},
//	  "observer": "slog"
//	}
type Config struct {
	Main     MainConfig `json:"main"`
	Default  PoolConfig `json:"default"`
	IO       PoolConfig `json:"io"`
	Observer string     `json:"observer"`
}

// DefaultConfig returns defaults suited to a UI-style host: a deep main
// queue, a CPU-sized default pool, and a wide unthrottled IO pool.
func DefaultConfig() Config {
	return Config{
		Main:     MainConfig{QueueSize: 256},
		Default:  PoolConfig{MaxWorkers: 0},
		IO:       PoolConfig{MaxWorkers: 64},
		Observer: "slog",
	}
}

func (c *Config) Merge(source *Config) {
	if source.Main.QueueSize > 0 {
		c.Main.QueueSize = source.Main.QueueSize
	}

	c.Default.Merge(&source.Default)
	c.IO.Merge(&source.IO)

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// New builds the reference Set described by cfg: a Sequenced main
// dispatcher, Pool dispatchers for default and io, and the unconfined
// dispatcher. Close the returned Set when done.
func New(cfg Config) (Set, error) {
	observer, err := observability.Resolve(cfg.Observer)
	if err != nil {
		return Set{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	return Set{
		Default:    NewPool(Default.String(), cfg.Default, observer),
		Main:       NewSequenced(Main.String(), cfg.Main.QueueSize, observer),
		Unconfined: NewUnconfined(),
		IO:         NewPool(IO.String(), cfg.IO, observer),
	}, nil
}
