package host

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/execution"
)

const defaultShutdownTimeout = 5 * time.Second

// TelemetryConfig controls the OpenTelemetry SDK providers built by New.
// When disabled, execution contexts use the global providers.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"service_name,omitempty"`
}

// Config holds initialization parameters for every layer the host
// builds. Each section delegates to that package's own config.
//
// Example JSON:
//
//	{
//	  "observer": "slog",
//	  "dispatchers": {"main": {"queue_size": 128}, "io": {"max_workers": 16}},
//	  "execution": {"name": "counter", "show_progress_delay_ms": 300},
//	  "telemetry": {"enabled": true, "service_name": "counter"},
//	  "shutdown_timeout_ms": 2000
//	}
type Config struct {
	Observer        string             `json:"observer"`
	Dispatchers     dispatchers.Config `json:"dispatchers"`
	Execution       execution.Config   `json:"execution"`
	Telemetry       TelemetryConfig    `json:"telemetry"`
	ShutdownTimeout int                `json:"shutdown_timeout_ms,omitempty"`
}

// DefaultConfig returns a Config with the defaults of every layer.
func DefaultConfig() Config {
	return Config{
		Observer:        "slog",
		Dispatchers:     dispatchers.DefaultConfig(),
		Execution:       execution.DefaultConfig(),
		Telemetry:       TelemetryConfig{ServiceName: "statekit"},
		ShutdownTimeout: int(defaultShutdownTimeout / time.Millisecond),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// layer's Merge method.
func (c *Config) Merge(source *Config) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}

	c.Dispatchers.Merge(&source.Dispatchers)
	c.Execution.Merge(&source.Execution)

	if source.Telemetry.Enabled {
		c.Telemetry.Enabled = true
	}
	if source.Telemetry.ServiceName != "" {
		c.Telemetry.ServiceName = source.Telemetry.ServiceName
	}

	if source.ShutdownTimeout > 0 {
		c.ShutdownTimeout = source.ShutdownTimeout
	}
}

// ShutdownDuration returns ShutdownTimeout as a duration.
func (c Config) ShutdownDuration() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return time.Duration(c.ShutdownTimeout) * time.Millisecond
}

// LoadConfig reads a JSON config file, merges it with defaults, and
// returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
