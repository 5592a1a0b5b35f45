package usbiss

import (
	"errors"
	"fmt"
)

// Configuration errors. They are detected before any I/O, except
// ErrDeviceRejected which wraps the adapter's response.
var (
	ErrNonIntegralDivisor = errors.New("nonintegral SCK divisor")
	ErrDivisorOutOfRange  = errors.New("SCK divisor is not between 1 and 255")
	ErrModeNotConfigured  = errors.New("operating mode not configured")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrUnknownPinFunction = errors.New("unknown pin function")
	ErrUnknownMode        = errors.New("unknown operating mode")
	ErrInvalidSPIMode     = errors.New("SPI mode is not between 0 and 3")
	ErrUnsupportedSpeed   = errors.New("unsupported I2C speed")
	ErrModeMismatch       = errors.New("operation not valid in the active mode")
	ErrInvalidPin         = errors.New("pin is not between 1 and 4")
	ErrPinNotAnalog       = errors.New("pin is not configured as an analogue input")
	ErrDeviceRejected     = errors.New("device rejected configuration")
	ErrInvalidFrame       = errors.New("request does not fit a command frame")
)

// ErrClosed is returned, wrapped in a TransportError, after Close.
var ErrClosed = errors.New("adapter closed")

// ConfigError indicates an invalid configuration or an operation issued in
// the wrong mode. It is never retried automatically.
type ConfigError struct {
	// Field names the offending parameter or operation
	Field string

	// Err is one of the configuration sentinels above
	Err error

	// Cause is the adapter's response error for ErrDeviceRejected, or the
	// codec's reason for ErrInvalidFrame
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Field, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *ConfigError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// TransportError indicates the serial transport failed. The adapter refuses
// further I/O once one has occurred.
type TransportError struct {
	// Op is the operation in flight
	Op string

	// Err is the underlying I/O error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}

func frameErr(field string, cause error) error {
	return &ConfigError{Field: field, Err: ErrInvalidFrame, Cause: cause}
}
