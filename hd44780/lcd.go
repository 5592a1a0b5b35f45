package hd44780

import (
	"fmt"
	"time"
)

// Expander writes one byte to the PCF8574 port. *usbiss.I2CDevice
// satisfies it.
type Expander interface {
	WriteRawByte(value byte) error
}

// Device is an HD44780 character LCD driven in 4-bit mode through a PCF8574.
type Device struct {
	exp    Expander
	config Config

	lines   int
	columns int

	cursorX        int
	cursorY        int
	impliedNewline bool
	backlight      bool
}

// New initializes the display and returns it cleared, with the backlight on
// and the cursor hidden. lines is capped at 4 and columns at 40.
//
// Example:
//
//	lcd, err := hd44780.New(a.Device(hd44780.DefaultAddress), 2, 16)
func New(exp Expander, lines, columns int, opts ...Option) (*Device, error) {
	if exp == nil {
		return nil, fmt.Errorf("expander cannot be nil")
	}
	if lines < 1 || columns < 1 {
		return nil, fmt.Errorf("invalid geometry %dx%d", columns, lines)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if lines > MaxLines {
		lines = MaxLines
	}
	if columns > MaxColumns {
		columns = MaxColumns
	}

	d := &Device{
		exp:     exp,
		config:  cfg,
		lines:   lines,
		columns: columns,
	}

	if err := d.init(); err != nil {
		return nil, fmt.Errorf("initialize lcd: %w", err)
	}
	return d, nil
}

func (d *Device) init() error {
	if err := d.exp.WriteRawByte(0); err != nil {
		return err
	}
	d.sleep(20 * time.Millisecond)

	// Three resets put the controller in 8-bit mode from any state.
	for _, wait := range []time.Duration{5 * time.Millisecond, time.Millisecond, time.Millisecond} {
		if err := d.writeInitNibble(CmdFunctionReset); err != nil {
			return err
		}
		d.sleep(wait)
	}

	if err := d.writeInitNibble(CmdFunction); err != nil {
		return err
	}
	d.sleep(time.Millisecond)

	d.backlight = true
	steps := []func() error{
		d.DisplayOff,
		d.BacklightOn,
		d.Clear,
		func() error { return d.writeCommand(CmdEntryMode | EntryInc) },
		d.HideCursor,
		d.DisplayOn,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	cmd := byte(CmdFunction)
	if d.lines > 1 {
		cmd |= Function2Lines
	}
	return d.writeCommand(cmd)
}

// Lines returns the number of display lines.
func (d *Device) Lines() int {
	return d.lines
}

// Columns returns the number of display columns.
func (d *Device) Columns() int {
	return d.columns
}

// Cursor returns the current cursor column and line.
func (d *Device) Cursor() (x, y int) {
	return d.cursorX, d.cursorY
}

// Clear blanks the display and homes the cursor.
func (d *Device) Clear() error {
	if err := d.writeCommand(CmdClear); err != nil {
		return err
	}
	if err := d.writeCommand(CmdHome); err != nil {
		return err
	}
	d.cursorX = 0
	d.cursorY = 0
	return nil
}

// ShowCursor shows a steady underline cursor.
func (d *Device) ShowCursor() error {
	return d.writeCommand(CmdOnCtrl | OnDisplay | OnCursor)
}

// HideCursor hides the cursor.
func (d *Device) HideCursor() error {
	return d.writeCommand(CmdOnCtrl | OnDisplay)
}

// BlinkCursorOn shows a blinking block cursor.
func (d *Device) BlinkCursorOn() error {
	return d.writeCommand(CmdOnCtrl | OnDisplay | OnCursor | OnBlink)
}

// BlinkCursorOff stops the cursor blinking and leaves it visible.
func (d *Device) BlinkCursorOff() error {
	return d.writeCommand(CmdOnCtrl | OnDisplay | OnCursor)
}

// DisplayOn turns the display on with the cursor hidden.
func (d *Device) DisplayOn() error {
	return d.writeCommand(CmdOnCtrl | OnDisplay)
}

// DisplayOff blanks the display without losing its contents.
func (d *Device) DisplayOff() error {
	return d.writeCommand(CmdOnCtrl)
}

// BacklightOn switches the backlight on.
func (d *Device) BacklightOn() error {
	d.backlight = true
	return d.exp.WriteRawByte(1 << ShiftBacklight)
}

// BacklightOff switches the backlight off.
func (d *Device) BacklightOff() error {
	d.backlight = false
	return d.exp.WriteRawByte(0)
}

// MoveTo positions the cursor at column x of line y, both zero-based.
// Lines 2 and 3 continue lines 0 and 1 in display memory.
func (d *Device) MoveTo(x, y int) error {
	d.cursorX = x
	d.cursorY = y

	addr := byte(x & 0x3F)
	if y&1 != 0 {
		addr += 0x40
	}
	if y&2 != 0 {
		addr += byte(d.columns)
	}
	return d.writeCommand(CmdDDRAM | addr)
}

// PutChar writes c at the cursor and advances it, wrapping at the end of a
// line and from the last line back to the first. A newline moves to the
// next line unless the previous character already wrapped there.
func (d *Device) PutChar(c byte) error {
	if c == '\n' {
		if !d.impliedNewline {
			d.cursorX = d.columns
		}
	} else {
		if err := d.writeData(c); err != nil {
			return err
		}
		d.cursorX++
	}
	d.impliedNewline = false

	if d.cursorX >= d.columns {
		d.cursorX = 0
		d.cursorY++
		d.impliedNewline = c != '\n'
	}
	if d.cursorY >= d.lines {
		d.cursorY = 0
	}
	return d.MoveTo(d.cursorX, d.cursorY)
}

// PutString writes s one byte at a time.
func (d *Device) PutString(s string) error {
	for i := 0; i < len(s); i++ {
		if err := d.PutChar(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// CustomChar stores an 5x8 glyph in CGRAM slot location (0-7). The glyph is
// then printed with PutChar(location).
func (d *Device) CustomChar(location byte, charmap [8]byte) error {
	location &= 0x07
	if err := d.writeCommand(CmdCGRAM | location<<3); err != nil {
		return err
	}
	d.sleep(40 * time.Microsecond)
	for _, row := range charmap {
		if err := d.writeData(row); err != nil {
			return err
		}
		d.sleep(40 * time.Microsecond)
	}
	return d.MoveTo(d.cursorX, d.cursorY)
}

// writeInitNibble writes the high nibble of b with E pulsed. Used only
// before 4-bit mode is established.
func (d *Device) writeInitNibble(b byte) error {
	v := ((b >> 4) & 0x0F) << ShiftData
	return d.pulse(v)
}

// writeCommand sends cmd as two nibbles with RS low. Clear and home need
// over 4.1 ms to complete.
func (d *Device) writeCommand(cmd byte) error {
	if err := d.writeByte(0, cmd); err != nil {
		return err
	}
	if cmd <= 3 {
		d.sleep(5 * time.Millisecond)
	}
	return nil
}

func (d *Device) writeData(data byte) error {
	return d.writeByte(MaskRS, data)
}

func (d *Device) writeByte(rs, b byte) error {
	base := rs | d.backlightBit()
	if err := d.pulse(base | ((b>>4)&0x0F)<<ShiftData); err != nil {
		return err
	}
	return d.pulse(base | (b&0x0F)<<ShiftData)
}

// pulse latches v on the falling edge of E.
func (d *Device) pulse(v byte) error {
	if err := d.exp.WriteRawByte(v | MaskE); err != nil {
		return err
	}
	return d.exp.WriteRawByte(v)
}

func (d *Device) backlightBit() byte {
	if d.backlight {
		return 1 << ShiftBacklight
	}
	return 0
}

func (d *Device) sleep(dur time.Duration) {
	d.config.Sleep(dur)
}
