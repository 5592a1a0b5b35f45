package usbiss

import (
	"context"
	"fmt"

	"github.com/moffa90/go-usbiss/protocol"
	"tinygo.org/x/drivers"
)

// Probe reports whether a device acknowledges the 7-bit address addr.
func (a *Adapter) Probe(ctx context.Context, addr uint8) (bool, error) {
	if _, err := a.i2cMode("i2c probe"); err != nil {
		return false, err
	}

	cmd, err := protocol.BuildI2CTestCmd(addr)
	if err != nil {
		return false, frameErr("i2c", err)
	}

	resp, err := a.exchange(ctx, "i2c probe", cmd, protocol.AckResponseSize)
	if err != nil {
		return false, err
	}
	if len(resp) == 0 {
		return false, nil
	}
	return resp[0] != protocol.NackFail, nil
}

// WriteRawByte writes one byte to a device without internal registers.
func (a *Adapter) WriteRawByte(ctx context.Context, addr uint8, value byte) error {
	if _, err := a.i2cMode("i2c write"); err != nil {
		return err
	}

	cmd, err := protocol.BuildI2CSingleWriteCmd(addr, value)
	if err != nil {
		return frameErr("i2c", err)
	}
	return a.i2cWrite(ctx, cmd)
}

// ReadRawByte reads one byte from a device without internal registers.
func (a *Adapter) ReadRawByte(ctx context.Context, addr uint8) (byte, error) {
	if _, err := a.i2cMode("i2c read"); err != nil {
		return 0, err
	}

	cmd, err := protocol.BuildI2CSingleReadCmd(addr)
	if err != nil {
		return 0, frameErr("i2c", err)
	}

	data, err := a.i2cRead(ctx, cmd, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// I2CWrite writes data to a device without internal registers.
func (a *Adapter) I2CWrite(ctx context.Context, addr uint8, data []byte) error {
	if _, err := a.i2cMode("i2c write"); err != nil {
		return err
	}

	cmd, err := protocol.BuildI2CWriteCmd(addr, data)
	if err != nil {
		return frameErr("i2c", err)
	}
	return a.i2cWrite(ctx, cmd)
}

// I2CRead reads n bytes from a device without internal registers.
func (a *Adapter) I2CRead(ctx context.Context, addr uint8, n int) ([]byte, error) {
	if _, err := a.i2cMode("i2c read"); err != nil {
		return nil, err
	}

	cmd, err := protocol.BuildI2CReadCmd(addr, n)
	if err != nil {
		return nil, frameErr("i2c", err)
	}
	return a.i2cRead(ctx, cmd, n)
}

// WriteRegister writes data starting at an 8-bit register address.
func (a *Adapter) WriteRegister(ctx context.Context, addr, reg uint8, data []byte) error {
	if _, err := a.i2cMode("i2c write"); err != nil {
		return err
	}

	cmd, err := protocol.BuildI2CRegWriteCmd(addr, reg, data)
	if err != nil {
		return frameErr("i2c", err)
	}
	return a.i2cWrite(ctx, cmd)
}

// ReadRegister reads n bytes starting at an 8-bit register address.
func (a *Adapter) ReadRegister(ctx context.Context, addr, reg uint8, n int) ([]byte, error) {
	if _, err := a.i2cMode("i2c read"); err != nil {
		return nil, err
	}

	cmd, err := protocol.BuildI2CRegReadCmd(addr, reg, n)
	if err != nil {
		return nil, frameErr("i2c", err)
	}
	return a.i2cRead(ctx, cmd, n)
}

// WriteRegister16 writes data starting at a 16-bit register address, as used
// by larger EEPROMs.
func (a *Adapter) WriteRegister16(ctx context.Context, addr uint8, reg uint16, data []byte) error {
	if _, err := a.i2cMode("i2c write"); err != nil {
		return err
	}

	cmd, err := protocol.BuildI2CReg16WriteCmd(addr, reg, data)
	if err != nil {
		return frameErr("i2c", err)
	}
	return a.i2cWrite(ctx, cmd)
}

// ReadRegister16 reads n bytes starting at a 16-bit register address.
func (a *Adapter) ReadRegister16(ctx context.Context, addr uint8, reg uint16, n int) ([]byte, error) {
	if _, err := a.i2cMode("i2c read"); err != nil {
		return nil, err
	}

	cmd, err := protocol.BuildI2CReg16ReadCmd(addr, reg, n)
	if err != nil {
		return nil, frameErr("i2c", err)
	}
	return a.i2cRead(ctx, cmd, n)
}

func (a *Adapter) i2cWrite(ctx context.Context, cmd []byte) error {
	resp, err := a.exchange(ctx, "i2c write", cmd, protocol.AckResponseSize)
	if err != nil {
		return err
	}
	return protocol.ParseAckResponse("i2c write", resp)
}

func (a *Adapter) i2cRead(ctx context.Context, cmd []byte, n int) ([]byte, error) {
	resp, err := a.exchange(ctx, "i2c read", cmd, n)
	if err != nil {
		return nil, err
	}
	return protocol.ParseDataResponse("i2c read", resp, n)
}

// I2CDevice is a device at a fixed address on the adapter's I2C bus.
type I2CDevice struct {
	a    *Adapter
	addr uint8
}

// Device returns a handle for the I2C device at the 7-bit address addr.
func (a *Adapter) Device(addr uint8) *I2CDevice {
	return &I2CDevice{a: a, addr: addr}
}

// Address returns the device's 7-bit address.
func (d *I2CDevice) Address() uint8 {
	return d.addr
}

// WriteRawByte writes one byte to the device.
func (d *I2CDevice) WriteRawByte(value byte) error {
	return d.a.WriteRawByte(context.Background(), d.addr, value)
}

// ReadRawByte reads one byte from the device.
func (d *I2CDevice) ReadRawByte() (byte, error) {
	return d.a.ReadRawByte(context.Background(), d.addr)
}

// WriteRegister writes data starting at register reg.
func (d *I2CDevice) WriteRegister(reg uint8, data []byte) error {
	return d.a.WriteRegister(context.Background(), d.addr, reg, data)
}

// ReadRegister reads n bytes starting at register reg.
func (d *I2CDevice) ReadRegister(reg uint8, n int) ([]byte, error) {
	return d.a.ReadRegister(context.Background(), d.addr, reg, n)
}

// I2CBus exposes the adapter as a tinygo drivers.I2C so existing sensor
// drivers can run on a host through the USB-ISS.
type I2CBus struct {
	a *Adapter
}

var _ drivers.I2C = (*I2CBus)(nil)

// I2C returns the adapter's bus. The adapter must be in I2C mode.
func (a *Adapter) I2C() *I2CBus {
	return &I2CBus{a: a}
}

// Tx performs one bus transaction. The USB-ISS has no combined write/read
// primitive, so only the shapes below are supported:
//
//	w empty, r empty     address probe
//	w only               single or multi-byte write
//	r only               single or multi-byte read
//	1-byte w, then r     8-bit register read
//	2-byte w, then r     16-bit register read
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	if addr > protocol.MaxI2CAddress {
		return fmt.Errorf("I2C address 0x%X is not a 7-bit address", addr)
	}
	ctx := context.Background()
	a7 := uint8(addr)

	switch {
	case len(w) == 0 && len(r) == 0:
		ok, err := b.a.Probe(ctx, a7)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no device at 0x%02X", a7)
		}
		return nil

	case len(r) == 0:
		if len(w) == 1 {
			return b.a.WriteRawByte(ctx, a7, w[0])
		}
		return b.a.I2CWrite(ctx, a7, w)

	case len(w) == 0:
		var data []byte
		var err error
		if len(r) == 1 {
			var v byte
			v, err = b.a.ReadRawByte(ctx, a7)
			data = []byte{v}
		} else {
			data, err = b.a.I2CRead(ctx, a7, len(r))
		}
		if err != nil {
			return err
		}
		copy(r, data)
		return nil

	case len(w) == 1:
		data, err := b.a.ReadRegister(ctx, a7, w[0], len(r))
		if err != nil {
			return err
		}
		copy(r, data)
		return nil

	case len(w) == 2:
		data, err := b.a.ReadRegister16(ctx, a7, uint16(w[0])<<8|uint16(w[1]), len(r))
		if err != nil {
			return err
		}
		copy(r, data)
		return nil
	}

	return fmt.Errorf("unsupported I2C transaction: write %d bytes then read %d", len(w), len(r))
}

// ReadRegister reads len(buf) bytes from register r of the device at addr.
func (b *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	data, err := b.a.ReadRegister(context.Background(), addr, r, len(buf))
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

// WriteRegister writes buf to register r of the device at addr.
func (b *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return b.a.WriteRegister(context.Background(), addr, r, buf)
}
