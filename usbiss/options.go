package usbiss

import "time"

// Config holds the adapter configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// CommandDelay is an optional pause between writing a command and
	// reading its response
	CommandDelay time.Duration

	// SkipHandshake stops New from reading the module info and serial number
	SkipHandshake bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring the Adapter.
type Option func(*Config)

// WithLogger sets a logger for adapter operations.
//
// Example:
//
//	a, err := usbiss.New(ctx, port, usbiss.WithLogger(usbiss.GlogLogger{}))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCommandDelay sets a pause between each command and its response read.
// Useful with USB-serial bridges that split responses.
func WithCommandDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.CommandDelay = d
		}
	}
}

// WithSkipHandshake makes New return without talking to the adapter.
// Info and SerialNumber stay empty until Refresh is called.
func WithSkipHandshake() Option {
	return func(c *Config) {
		c.SkipHandshake = true
	}
}
