// Package serial opens the USB-ISS serial transport.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port represents a serial port connected to a USB-ISS.
// Read returns fewer bytes than requested, possibly zero, once the read
// timeout expires.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any unread input and unwritten output
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string `yaml:"device"`

	// Baud rate. The USB-ISS is a CDC device and ignores it on the USB
	// side, but the host driver still requires a value.
	Baud int `yaml:"baud"`

	// ReadTimeout bounds every blocking read
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DefaultConfig returns the USB-ISS line settings: 9600 baud, 8 data bits,
// no parity, one stop bit, no flow control and a one second read timeout.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        9600,
		ReadTimeout: time.Second,
	}
}

// Validate checks the configuration before a port is opened.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device path is required")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", c.Baud)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", c.ReadTimeout)
	}
	return nil
}

// nativePort wraps the tarm/serial implementation
type nativePort struct {
	port *serial.Port
}

// Open opens a native serial port.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(tarmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &nativePort{port: port}, nil
}

func tarmConfig(cfg *Config) *serial.Config {
	return &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        serial.DefaultSize,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
}

func (p *nativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *nativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *nativePort) Close() error {
	return p.port.Close()
}

func (p *nativePort) Flush() error {
	return p.port.Flush()
}
