// Package config loads USB-ISS tool settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/moffa90/go-usbiss/hd44780"
	"github.com/moffa90/go-usbiss/serial"
	"github.com/moffa90/go-usbiss/usbiss"
)

// Environment variables that override the file.
const (
	EnvPort = "USBISS_PORT"
	EnvBaud = "USBISS_BAUD"
)

// Config represents the complete tool configuration
type Config struct {
	Serial  serial.Config `yaml:"serial"`
	Adapter AdapterConfig `yaml:"adapter"`
	LCD     LCDConfig     `yaml:"lcd"`
	Log     LogConfig     `yaml:"log"`
}

// AdapterConfig holds the operating mode options. Field names follow the
// USB-ISS documentation.
type AdapterConfig struct {
	ISSMode  string `yaml:"iss_mode"`
	SPIMode  *int   `yaml:"spi_mode"`
	Freq     uint32 `yaml:"freq"`
	Pin1     string `yaml:"pin1"`
	Pin2     string `yaml:"pin2"`
	Pin3     string `yaml:"pin3"`
	Pin4     string `yaml:"pin4"`
	I2CSpeed int    `yaml:"i2c_speed"`
	I2CType  string `yaml:"i2c_type"`

	CommandDelay time.Duration `yaml:"command_delay"`
}

// LCDConfig describes an HD44780 display on a PCF8574 backpack
type LCDConfig struct {
	Address uint8 `yaml:"address"`
	Lines   int   `yaml:"lines"`
	Columns int   `yaml:"columns"`
}

// LogConfig selects a rotating log file instead of glog output. Sizes are
// in megabytes and ages in days.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Verbose    bool   `yaml:"verbose"`
}

// Load reads configuration from path, applies environment overrides and
// validates the result. An empty path uses the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the default configuration: the first ACM device with the
// USB-ISS line settings, no operating mode and a 16x2 display at 0x27.
func Default() *Config {
	return &Config{
		Serial: *serial.DefaultConfig("/dev/ttyACM0"),
		LCD: LCDConfig{
			Address: hd44780.DefaultAddress,
			Lines:   2,
			Columns: 16,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if port := os.Getenv(EnvPort); port != "" {
		cfg.Serial.Device = port
	}

	if baud := os.Getenv(EnvBaud); baud != "" {
		n, err := strconv.Atoi(baud)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvBaud, baud, err)
		}
		cfg.Serial.Baud = n
	}

	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Serial.Validate(); err != nil {
		return err
	}

	if c.Adapter.ISSMode != "" {
		if _, err := c.Mode(); err != nil {
			return err
		}
	}

	if c.Adapter.CommandDelay < 0 {
		return fmt.Errorf("command delay must not be negative, got %s", c.Adapter.CommandDelay)
	}

	if c.LCD.Lines < 1 || c.LCD.Lines > hd44780.MaxLines {
		return fmt.Errorf("lcd lines %d is outside range [1, %d]", c.LCD.Lines, hd44780.MaxLines)
	}
	if c.LCD.Columns < 1 || c.LCD.Columns > hd44780.MaxColumns {
		return fmt.Errorf("lcd columns %d is outside range [1, %d]", c.LCD.Columns, hd44780.MaxColumns)
	}
	if c.LCD.Address > 0x7F {
		return fmt.Errorf("lcd address 0x%02X is not a 7-bit address", c.LCD.Address)
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}

	return nil
}

// ModeOptions returns the operating mode options.
func (c *Config) ModeOptions() usbiss.ModeOptions {
	a := c.Adapter
	return usbiss.ModeOptions{
		ISSMode:  a.ISSMode,
		SPIMode:  a.SPIMode,
		Freq:     a.Freq,
		Pins:     [4]string{a.Pin1, a.Pin2, a.Pin3, a.Pin4},
		I2CSpeed: a.I2CSpeed,
		I2CType:  a.I2CType,
	}
}

// Mode builds the configured operating mode. It returns nil without error
// when no mode is configured.
func (c *Config) Mode() (usbiss.OperatingMode, error) {
	if c.Adapter.ISSMode == "" {
		return nil, nil
	}
	return usbiss.ModeFromOptions(c.ModeOptions())
}

// AdapterOptions returns the usbiss options implied by the configuration.
func (c *Config) AdapterOptions() []usbiss.Option {
	var opts []usbiss.Option
	if c.Adapter.CommandDelay > 0 {
		opts = append(opts, usbiss.WithCommandDelay(c.Adapter.CommandDelay))
	}
	return opts
}
