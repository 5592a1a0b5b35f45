// Package usbisstest provides an in-memory USB-ISS for tests and dry runs.
//
// Device decodes each Write as one command frame and queues the response the
// real adapter would send. Read drains that queue and returns io.EOF when it
// is empty, which is how a serial port reports an expired read timeout.
package usbisstest

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/moffa90/go-usbiss/protocol"
)

// DefaultSerial is the serial number reported by a new Device.
const DefaultSerial = "00012345"

// I2CTarget simulates a device on the I2C bus.
type I2CTarget struct {
	// Written collects bytes written without a register address, in order
	Written []byte

	// Regs holds register contents for register and no-register reads
	Regs map[uint16]byte

	// Value is returned by single byte reads
	Value byte
}

// Device simulates a USB-ISS adapter.
type Device struct {
	mu sync.Mutex

	info     protocol.ModuleInfo
	serial   string
	ioType   byte
	outputs  byte
	inputs   byte
	analog   [protocol.NumPins]uint16
	targets  map[uint8]*I2CTarget
	spi      func([]byte) []byte
	modeErr  byte
	silent   bool
	writeErr error

	pending bytes.Buffer
	frames  [][]byte
	closes  int
}

// NewDevice creates a simulated adapter in I/O mode with all pins as inputs.
// SPI transfers are looped back.
func NewDevice() *Device {
	return &Device{
		info:    protocol.ModuleInfo{ID: 7, Firmware: 0x02, Mode: protocol.ModeIO},
		serial:  DefaultSerial,
		ioType:  0xAA,
		targets: make(map[uint8]*I2CTarget),
		spi:     func(out []byte) []byte { return append([]byte(nil), out...) },
	}
}

// Read returns queued response bytes.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending.Len() == 0 {
		return 0, io.EOF
	}
	return d.pending.Read(p)
}

// Write handles one command frame.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closes > 0 {
		return 0, io.ErrClosedPipe
	}
	if d.writeErr != nil {
		return 0, d.writeErr
	}

	d.frames = append(d.frames, append([]byte(nil), p...))
	if len(p) == 0 || d.silent {
		return len(p), nil
	}

	d.pending.Write(d.handle(p))
	return len(p), nil
}

// Close records the close.
func (d *Device) Close() error {
	d.mu.Lock()
	d.closes++
	d.mu.Unlock()
	return nil
}

// Flush discards queued responses.
func (d *Device) Flush() error {
	d.mu.Lock()
	d.pending.Reset()
	d.mu.Unlock()
	return nil
}

// Frames returns every frame written so far.
func (d *Device) Frames() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.frames...)
}

// LastFrame returns the most recent frame, or nil.
func (d *Device) LastFrame() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

// ResetFrames forgets recorded frames.
func (d *Device) ResetFrames() {
	d.mu.Lock()
	d.frames = nil
	d.mu.Unlock()
}

// Closes returns how many times Close was called.
func (d *Device) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Mode returns the active mode byte.
func (d *Device) Mode() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info.Mode
}

// IOType returns the active IO_TYPE byte.
func (d *Device) IOType() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ioType
}

// Outputs returns the last state written with Set Pins.
func (d *Device) Outputs() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outputs
}

// SetInfo replaces the identity reported by Get Info.
func (d *Device) SetInfo(info protocol.ModuleInfo) {
	d.mu.Lock()
	d.info = info
	d.mu.Unlock()
}

// SetInputs sets the levels seen on pins configured as inputs. Bit 0 is pin 1.
func (d *Device) SetInputs(levels byte) {
	d.mu.Lock()
	d.inputs = levels & 0x0F
	d.mu.Unlock()
}

// SetAnalog sets the 10-bit value returned for a pin (1-4).
func (d *Device) SetAnalog(pin int, value uint16) {
	d.mu.Lock()
	d.analog[pin-1] = value & 0x03FF
	d.mu.Unlock()
}

// SetSPIResponder replaces the SPI loopback.
func (d *Device) SetSPIResponder(fn func(out []byte) []byte) {
	d.mu.Lock()
	d.spi = fn
	d.mu.Unlock()
}

// FailModeSet makes every following Set Mode fail with code.
// A zero code restores normal behaviour.
func (d *Device) FailModeSet(code byte) {
	d.mu.Lock()
	d.modeErr = code
	d.mu.Unlock()
}

// SetSilent stops the device from answering, as if unplugged mid-session.
func (d *Device) SetSilent(silent bool) {
	d.mu.Lock()
	d.silent = silent
	d.mu.Unlock()
}

// SetWriteError makes Write fail with err.
func (d *Device) SetWriteError(err error) {
	d.mu.Lock()
	d.writeErr = err
	d.mu.Unlock()
}

// AddI2CTarget attaches a device at a 7-bit address.
func (d *Device) AddI2CTarget(addr uint8) *I2CTarget {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := &I2CTarget{Regs: make(map[uint16]byte)}
	d.targets[addr] = t
	return t
}

func (d *Device) handle(p []byte) []byte {
	switch p[0] {
	case protocol.ISSCommand:
		return d.handleISS(p)
	case protocol.CmdSPI:
		return d.handleSPI(p[1:])
	case protocol.CmdI2CSingle, protocol.CmdI2CNoReg, protocol.CmdI2CReg8, protocol.CmdI2CReg16, protocol.CmdI2CTest:
		return d.handleI2C(p)
	case protocol.CmdSetPins:
		if !d.inIOMode() || len(p) < 2 {
			return []byte{protocol.NackFail}
		}
		d.outputs = p[1] & 0x0F
		return []byte{protocol.AckOK}
	case protocol.CmdGetPins:
		if !d.inIOMode() {
			return []byte{protocol.NackFail}
		}
		return []byte{d.levels()}
	case protocol.CmdGetAD:
		if !d.inIOMode() || len(p) < 2 || p[1] < 1 || p[1] > protocol.NumPins {
			return []byte{0, 0}
		}
		v := d.analog[p[1]-1]
		return []byte{byte(v >> 8), byte(v)}
	}
	return nil
}

func (d *Device) handleISS(p []byte) []byte {
	if len(p) < 2 {
		return nil
	}

	switch p[1] {
	case protocol.SubVersion:
		return protocol.EncodeInfo(d.info)
	case protocol.SubSerialNumber:
		return []byte(fmt.Sprintf("%8.8s", d.serial))
	case protocol.SubSetMode:
		if d.modeErr != 0 {
			return protocol.EncodeModeSetNack(d.modeErr)
		}
		if len(p) < 4 || !validMode(p[2]) {
			return protocol.EncodeModeSetNack(protocol.ErrCodeUnknownCommand)
		}
		d.info.Mode = p[2]
		d.ioType = p[3]
		d.outputs = 0
		for i := 0; i < protocol.NumPins; i++ {
			if (d.ioType>>(2*i))&0x03 == protocol.IOTypeOutputHigh {
				d.outputs |= 1 << i
			}
		}
		return protocol.EncodeModeSetAck(p[2])
	}
	return protocol.EncodeModeSetNack(protocol.ErrCodeUnknownCommand)
}

func (d *Device) handleSPI(out []byte) []byte {
	if d.info.Mode&0xF0 != protocol.ModeSPI {
		return make([]byte, 1+len(out))
	}

	in := d.spi(out)
	resp := make([]byte, len(out))
	copy(resp, in)
	return protocol.EncodeSPIResponse(resp)
}

func (d *Device) handleI2C(p []byte) []byte {
	if len(p) < 2 || !d.inI2CMode() {
		return []byte{protocol.NackFail}
	}

	addr := p[1] >> 1
	read := p[1]&0x01 != 0
	t, ok := d.targets[addr]

	if p[0] == protocol.CmdI2CTest {
		if ok {
			return []byte{protocol.AckOK}
		}
		return []byte{protocol.NackFail}
	}

	if !ok {
		if read {
			// Reads from an absent device time out.
			return nil
		}
		return []byte{protocol.NackFail}
	}

	switch p[0] {
	case protocol.CmdI2CSingle:
		if read {
			return []byte{t.Value}
		}
		if len(p) < 3 {
			return []byte{protocol.NackFail}
		}
		t.Written = append(t.Written, p[2])
		return []byte{protocol.AckOK}

	case protocol.CmdI2CNoReg:
		if len(p) < 3 {
			return []byte{protocol.NackFail}
		}
		n := int(p[2])
		if read {
			return t.read(0, n)
		}
		if len(p) < 3+n {
			return []byte{protocol.NackFail}
		}
		t.Written = append(t.Written, p[3:3+n]...)
		return []byte{protocol.AckOK}

	case protocol.CmdI2CReg8:
		if len(p) < 4 {
			return []byte{protocol.NackFail}
		}
		return t.access(uint16(p[2]), p[3:], read)

	case protocol.CmdI2CReg16:
		if len(p) < 5 {
			return []byte{protocol.NackFail}
		}
		return t.access(uint16(p[2])<<8|uint16(p[3]), p[4:], read)
	}
	return nil
}

// access handles [COUNT][DATA...] after the register address.
func (t *I2CTarget) access(reg uint16, rest []byte, read bool) []byte {
	n := int(rest[0])
	if read {
		return t.read(reg, n)
	}
	if len(rest) < 1+n {
		return []byte{protocol.NackFail}
	}
	for i, b := range rest[1 : 1+n] {
		t.Regs[reg+uint16(i)] = b
	}
	return []byte{protocol.AckOK}
}

func (t *I2CTarget) read(reg uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = t.Regs[reg+uint16(i)]
	}
	return out
}

func (d *Device) inIOMode() bool {
	return d.info.Mode == protocol.ModeIO || d.info.Mode == protocol.ModeIOChange
}

func (d *Device) inI2CMode() bool {
	return d.info.Mode >= protocol.ModeI2CSoft20k && d.info.Mode <= protocol.ModeI2CHard1000k
}

// levels merges driven outputs with input levels according to IO_TYPE.
func (d *Device) levels() byte {
	var out byte
	for i := 0; i < protocol.NumPins; i++ {
		mask := byte(1) << i
		fn := (d.ioType >> (2 * i)) & 0x03
		switch fn {
		case protocol.IOTypeOutputLow, protocol.IOTypeOutputHigh:
			out |= d.outputs & mask
		default:
			out |= d.inputs & mask
		}
	}
	return out
}

func validMode(b byte) bool {
	switch {
	case b == protocol.ModeIO, b == protocol.ModeIOChange:
		return true
	case b >= protocol.ModeI2CSoft20k && b <= protocol.ModeI2CHard1000k && b&0x0F == 0:
		return true
	case b >= protocol.ModeSPI && b <= protocol.ModeSPI+3:
		return true
	}
	return false
}
