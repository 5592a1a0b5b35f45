package usbiss

import (
	"context"
	"fmt"

	"github.com/moffa90/go-usbiss/protocol"
)

// SPITransfer clocks data out in SPI mode and returns the bytes clocked in,
// one per byte sent, in order. At most protocol.MaxSPIPayload bytes fit in
// one transfer.
//
// Example:
//
//	in, err := a.SPITransfer(ctx, []byte{0x45})
func (a *Adapter) SPITransfer(ctx context.Context, data []byte) ([]byte, error) {
	if _, err := a.spiMode("spi transfer"); err != nil {
		return nil, err
	}

	cmd, err := protocol.BuildSPITransferCmd(data)
	if err != nil {
		return nil, frameErr("data", err)
	}

	resp, err := a.exchange(ctx, "spi transfer", cmd, 1+len(data))
	if err != nil {
		return nil, err
	}

	return protocol.ParseSPIResponse(resp, len(data))
}

// SetPin drives an output pin (1-4) in I/O mode. The new state is written to
// the adapter immediately; the cached state changes only once it is acknowledged.
func (a *Adapter) SetPin(ctx context.Context, pin int, level bool) error {
	if _, err := a.ioMode("set pin"); err != nil {
		return err
	}
	mask, err := pinMask(pin)
	if err != nil {
		return err
	}

	state := a.pins
	if level {
		state |= mask
	} else {
		state &^= mask
	}
	return a.SetPins(ctx, state)
}

// SetPins writes all four pin levels at once. Bit 0 is pin 1. Levels for
// pins configured as inputs are ignored by the adapter.
func (a *Adapter) SetPins(ctx context.Context, state byte) error {
	if _, err := a.ioMode("set pins"); err != nil {
		return err
	}

	resp, err := a.exchange(ctx, "set pins", protocol.BuildSetPinsCmd(state), protocol.AckResponseSize)
	if err != nil {
		return err
	}
	if err := protocol.ParseAckResponse("set pins", resp); err != nil {
		return err
	}

	a.pins = state & 0x0F
	return nil
}

// GetPin reads the live level of a pin (1-4) in I/O mode.
func (a *Adapter) GetPin(ctx context.Context, pin int) (bool, error) {
	if _, err := a.ioMode("get pin"); err != nil {
		return false, err
	}
	mask, err := pinMask(pin)
	if err != nil {
		return false, err
	}

	state, err := a.GetPins(ctx)
	if err != nil {
		return false, err
	}
	return state&mask != 0, nil
}

// GetPins reads the live levels of all pins. Bit 0 is pin 1.
func (a *Adapter) GetPins(ctx context.Context) (byte, error) {
	if _, err := a.ioMode("get pins"); err != nil {
		return 0, err
	}

	resp, err := a.exchange(ctx, "get pins", protocol.BuildGetPinsCmd(), 1)
	if err != nil {
		return 0, err
	}

	state, err := protocol.ParseGetPinsResponse(resp)
	if err != nil {
		return 0, err
	}

	a.pins = state
	return state, nil
}

// PinState returns the cached pin levels from the last Set or Get without
// touching the adapter.
func (a *Adapter) PinState() byte {
	return a.pins
}

// ReadAnalog returns the 10-bit conversion of a pin configured as an
// analogue input.
func (a *Adapter) ReadAnalog(ctx context.Context, pin int) (uint16, error) {
	mode, err := a.ioMode("read analog")
	if err != nil {
		return 0, err
	}
	if _, err := pinMask(pin); err != nil {
		return 0, err
	}
	if mode.Pins[pin-1] != InputAnalog {
		return 0, configErr(fmt.Sprintf("pin%d", pin), ErrPinNotAnalog)
	}

	cmd, err := protocol.BuildGetADCmd(uint8(pin))
	if err != nil {
		return 0, err
	}

	resp, err := a.exchange(ctx, "read analog", cmd, protocol.ADResponseSize)
	if err != nil {
		return 0, err
	}
	return protocol.ParseADResponse(resp)
}

func (a *Adapter) spiMode(op string) (SPIMode, error) {
	if a.mode == nil {
		return SPIMode{}, configErr(op, ErrModeNotConfigured)
	}
	m, ok := a.mode.(SPIMode)
	if !ok {
		return SPIMode{}, &ConfigError{Field: op, Err: fmt.Errorf("%w: %s", ErrModeMismatch, a.mode)}
	}
	return m, nil
}

func (a *Adapter) ioMode(op string) (IOMode, error) {
	if a.mode == nil {
		return IOMode{}, configErr(op, ErrModeNotConfigured)
	}
	m, ok := a.mode.(IOMode)
	if !ok {
		return IOMode{}, &ConfigError{Field: op, Err: fmt.Errorf("%w: %s", ErrModeMismatch, a.mode)}
	}
	return m, nil
}

func (a *Adapter) i2cMode(op string) (I2CMode, error) {
	if a.mode == nil {
		return I2CMode{}, configErr(op, ErrModeNotConfigured)
	}
	m, ok := a.mode.(I2CMode)
	if !ok {
		return I2CMode{}, &ConfigError{Field: op, Err: fmt.Errorf("%w: %s", ErrModeMismatch, a.mode)}
	}
	return m, nil
}

func pinMask(pin int) (byte, error) {
	if pin < 1 || pin > protocol.NumPins {
		return 0, &ConfigError{Field: "pin", Err: fmt.Errorf("%w: got %d", ErrInvalidPin, pin)}
	}
	return 1 << (pin - 1), nil
}
