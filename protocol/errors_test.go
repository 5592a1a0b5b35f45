package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestProtocolError(t *testing.T) {
	err := &ProtocolError{
		Operation: "set mode",
		Err:       ErrInternal1,
		Code:      ErrCodeInternal1,
	}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "set mode failed") {
		t.Errorf("error message should contain operation, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "internal error 1") {
		t.Errorf("error message should contain error name, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "0x06") {
		t.Errorf("error message should contain error code, got: %s", errMsg)
	}
}

func TestProtocolErrorWithoutCode(t *testing.T) {
	err := &ProtocolError{Operation: "spi transfer", Err: ErrTransmission}

	if got, want := err.Error(), "spi transfer failed: transmission error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsProtocolError(t *testing.T) {
	wrapped := fmt.Errorf("configure: %w", &ProtocolError{Operation: "set mode", Err: ErrUndocumented})

	if !IsProtocolError(wrapped) {
		t.Error("IsProtocolError should see through wrapping")
	}
	if !errors.Is(wrapped, ErrUndocumented) {
		t.Error("errors.Is should match the sentinel")
	}
	if IsProtocolError(errors.New("other")) {
		t.Error("IsProtocolError should be false for other errors")
	}
}

func TestModeSetErrorMapping(t *testing.T) {
	tests := []struct {
		code byte
		want error
	}{
		{0x05, ErrUnknownCommand},
		{0x06, ErrInternal1},
		{0x07, ErrInternal2},
		{0x08, ErrUndocumented},
		{0xFF, ErrUndocumented},
	}

	for _, tt := range tests {
		if got := modeSetError(tt.code); got != tt.want {
			t.Errorf("modeSetError(0x%02X) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
