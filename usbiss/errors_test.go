package usbiss

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/moffa90/go-usbiss/protocol"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "freq", Err: ErrNonIntegralDivisor}

	if got, want := err.Error(), "freq: nonintegral SCK divisor"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrNonIntegralDivisor) {
		t.Error("errors.Is should match the sentinel")
	}
}

func TestConfigErrorWithCause(t *testing.T) {
	cause := &protocol.ProtocolError{Operation: "set mode", Err: protocol.ErrInternal1, Code: protocol.ErrCodeInternal1}
	err := fmt.Errorf("configure: %w", &ConfigError{Field: "mode", Err: ErrDeviceRejected, Cause: cause})

	if !IsConfigError(err) {
		t.Error("IsConfigError should see through wrapping")
	}
	if !errors.Is(err, ErrDeviceRejected) {
		t.Error("should match ErrDeviceRejected")
	}
	if !errors.Is(err, protocol.ErrInternal1) {
		t.Error("should match the cause sentinel")
	}

	var pe *protocol.ProtocolError
	if !errors.As(err, &pe) || pe.Code != protocol.ErrCodeInternal1 {
		t.Errorf("errors.As should find the ProtocolError, got %v", pe)
	}

	if !strings.Contains(err.Error(), "(0x06)") {
		t.Errorf("message should carry the error code, got: %s", err.Error())
	}
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: "spi transfer", Err: io.ErrClosedPipe}

	if !strings.Contains(err.Error(), "transport error during spi transfer") {
		t.Errorf("error message should contain operation, got: %s", err.Error())
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("errors.Is should match the underlying error")
	}
	if !IsTransportError(err) {
		t.Error("IsTransportError should be true")
	}
	if IsTransportError(errors.New("other")) || IsConfigError(errors.New("other")) {
		t.Error("helpers should be false for other errors")
	}
}
