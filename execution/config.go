package execution

import "time"

// DefaultShowProgressDelay is how long a progress-gated task must run
// before its progress indicator is shown.
const DefaultShowProgressDelay = 250 * time.Millisecond

// Config holds execution context parameters.
type Config struct {
	// Name labels the context in events and spans.
	Name string `json:"name,omitempty"`

	// ShowProgressDelay in milliseconds. Zero uses DefaultShowProgressDelay.
	ShowProgressDelay int `json:"show_progress_delay_ms,omitempty"`

	// Observer is a registered observer name ("slog", "noop").
	Observer string `json:"observer,omitempty"`
}

// DefaultConfig returns the default execution configuration.
func DefaultConfig() Config {
	return Config{
		Name:              "execution",
		ShowProgressDelay: int(DefaultShowProgressDelay / time.Millisecond),
		Observer:          "slog",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.ShowProgressDelay > 0 {
		c.ShowProgressDelay = source.ShowProgressDelay
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// ProgressDelay returns ShowProgressDelay as a duration.
func (c Config) ProgressDelay() time.Duration {
	if c.ShowProgressDelay <= 0 {
		return DefaultShowProgressDelay
	}
	return time.Duration(c.ShowProgressDelay) * time.Millisecond
}
