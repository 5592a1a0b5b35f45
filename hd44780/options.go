package hd44780

import "time"

// Config holds the display configuration.
type Config struct {
	// Sleep waits between timed steps. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

func defaultConfig() Config {
	return Config{
		Sleep: time.Sleep,
	}
}

// Option is a functional option for configuring a Device.
type Option func(*Config)

// WithSleep replaces the delay function, e.g. with a no-op in tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Config) {
		if sleep != nil {
			c.Sleep = sleep
		}
	}
}
