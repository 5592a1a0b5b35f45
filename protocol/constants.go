package protocol

// ISSCommand prefixes every adapter management request (0x5A).
const ISSCommand = 0x5A

// Management sub-commands sent after ISSCommand.
const (
	// SubVersion requests module ID, firmware version and current mode
	SubVersion = 0x01

	// SubSetMode changes the operating mode
	SubSetMode = 0x02

	// SubSerialNumber requests the 8-byte ASCII serial number
	SubSerialNumber = 0x03
)

// Operating mode bytes for the Set Mode command.
const (
	ModeIO       = 0x00
	ModeIOChange = 0x10

	ModeI2CSoft20k   = 0x20
	ModeI2CSoft50k   = 0x30
	ModeI2CSoft100k  = 0x40
	ModeI2CSoft400k  = 0x50
	ModeI2CHard100k  = 0x60
	ModeI2CHard400k  = 0x70
	ModeI2CHard1000k = 0x80

	// ModeSPI is the base SPI mode byte; the SPI clock mode (0-3) is added to it.
	ModeSPI = 0x90
)

// Data command opcodes.
const (
	// CmdI2CSingle reads or writes a single byte to a device without registers
	CmdI2CSingle = 0x53

	// CmdI2CNoReg reads or writes multiple bytes to a device without registers
	CmdI2CNoReg = 0x54

	// CmdI2CReg8 reads or writes multiple bytes using a 1-byte register address
	CmdI2CReg8 = 0x55

	// CmdI2CReg16 reads or writes multiple bytes using a 2-byte register address
	CmdI2CReg16 = 0x56

	// CmdI2CTest checks whether a device acknowledges its address
	CmdI2CTest = 0x58

	// CmdSPI transfers bytes in SPI mode
	CmdSPI = 0x61

	// CmdSetPins drives the I/O pins
	CmdSetPins = 0x63

	// CmdGetPins reads the I/O pin levels
	CmdGetPins = 0x64

	// CmdGetAD reads an analogue input
	CmdGetAD = 0x65
)

// Error codes returned in the second byte of a rejected Set Mode response.
const (
	ErrCodeUnknownCommand = 0x05
	ErrCodeInternal1      = 0x06
	ErrCodeInternal2      = 0x07
)

// AckOK is the byte the adapter returns for an accepted command.
const AckOK = 0xFF

// NackFail is the byte the adapter returns for a failed command.
const NackFail = 0x00

// Size limits per the USB-ISS command set.
const (
	// MaxSPIPayload is the maximum number of bytes in one SPI transfer
	MaxSPIPayload = 63

	// MaxI2CPayload is the maximum number of bytes in one I2C read or write
	MaxI2CPayload = 60

	// MaxI2CAddress is the largest valid 7-bit I2C address
	MaxI2CAddress = 0x7F
)

// Response sizes.
const (
	// InfoResponseSize is the size of the Get Info response (3 bytes)
	InfoResponseSize = 3

	// SerialResponseSize is the size of the Get Serial Number response (8 bytes)
	SerialResponseSize = 8

	// ModeSetResponseSize is the size of the Set Mode response (2 bytes)
	ModeSetResponseSize = 2

	// AckResponseSize is the size of a single status byte response
	AckResponseSize = 1

	// ADResponseSize is the size of the Get AD response (2 bytes)
	ADResponseSize = 2
)

// SPIClockHz is the reference clock the SPI divisor is derived from.
const SPIClockHz = 6000000

// SPI divisor bounds.
const (
	MinSPIDivisor = 1
	MaxSPIDivisor = 255
)

// Pin function wire bits for the IO_TYPE byte, two bits per pin.
const (
	IOTypeOutputLow   = 0x00
	IOTypeOutputHigh  = 0x01
	IOTypeInput       = 0x02
	IOTypeAnalogInput = 0x03
)

// NumPins is the number of I/O pins on the adapter.
const NumPins = 4
