package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors carried by ProtocolError. Match them with errors.Is.
var (
	// ErrShortRead indicates the adapter returned fewer bytes than expected
	ErrShortRead = errors.New("short read")

	// ErrTransmission indicates the adapter reported a failed transfer
	ErrTransmission = errors.New("transmission error")

	// ErrUnknownCommand indicates the adapter did not recognise the command (0x05)
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInternal1 is adapter internal error 1 (0x06)
	ErrInternal1 = errors.New("internal error 1")

	// ErrInternal2 is adapter internal error 2 (0x07)
	ErrInternal2 = errors.New("internal error 2")

	// ErrUndocumented is any other Set Mode error code
	ErrUndocumented = errors.New("undocumented error")
)

// ProtocolError represents an error decoded from an adapter response.
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// Err is one of the sentinel errors above
	Err error

	// Code is the raw error byte from the adapter, if any
	Code byte
}

func (e *ProtocolError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed: %v (0x%02X)", e.Operation, e.Err, e.Code)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// modeSetError maps a Set Mode error code to its sentinel.
func modeSetError(code byte) error {
	switch code {
	case ErrCodeUnknownCommand:
		return ErrUnknownCommand
	case ErrCodeInternal1:
		return ErrInternal1
	case ErrCodeInternal2:
		return ErrInternal2
	default:
		return ErrUndocumented
	}
}

func shortRead(op string, got, want int) error {
	return &ProtocolError{
		Operation: op,
		Err:       fmt.Errorf("%w: got %d bytes, expected %d", ErrShortRead, got, want),
	}
}
