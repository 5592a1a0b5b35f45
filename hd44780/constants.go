package hd44780

// DefaultAddress is the PCF8574 address with all jumpers open. The expander
// is strappable from 0x20 to 0x27.
const DefaultAddress = 0x27

// PCF8574 output bits wired to the LCD.
const (
	MaskRS = 0x01
	MaskRW = 0x02
	MaskE  = 0x04

	ShiftBacklight = 3
	ShiftData      = 4
)

// HD44780 instruction set.
const (
	CmdClear = 0x01
	CmdHome  = 0x02

	CmdEntryMode = 0x04
	EntryInc     = 0x02
	EntryShift   = 0x01

	CmdOnCtrl = 0x08
	OnDisplay = 0x04
	OnCursor  = 0x02
	OnBlink   = 0x01

	CmdShift   = 0x10
	ShiftDisp  = 0x08
	ShiftRight = 0x04

	CmdFunction      = 0x20
	Function8Bit     = 0x10
	Function2Lines   = 0x08
	Function10Dots   = 0x04
	CmdFunctionReset = 0x30

	CmdCGRAM = 0x40
	CmdDDRAM = 0x80
)

// Geometry limits of the controller.
const (
	MaxLines   = 4
	MaxColumns = 40
)
