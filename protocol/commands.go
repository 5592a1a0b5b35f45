package protocol

import (
	"fmt"
)

// BuildInfoCmd constructs a Get Info command frame.
//
// Frame structure:
//
//	[0x5A][0x01]
func BuildInfoCmd() []byte {
	return []byte{ISSCommand, SubVersion}
}

// BuildSerialCmd constructs a Get Serial Number command frame.
//
// Frame structure:
//
//	[0x5A][0x03]
func BuildSerialCmd() []byte {
	return []byte{ISSCommand, SubSerialNumber}
}

// BuildModeSetCmd constructs a Set Mode command frame.
// The mode bytes depend on the operating mode:
//
//	SPI:  [0x90+spi_mode][sck_divisor]
//	I/O:  [0x00][io_type]
//	I2C:  [i2c_mode][io_type for the spare pins]
//
// Frame structure:
//
//	[0x5A][0x02][MODE_BYTES...]
func BuildModeSetCmd(modeBytes []byte) ([]byte, error) {
	if len(modeBytes) == 0 {
		return nil, fmt.Errorf("mode bytes cannot be empty")
	}

	frame := make([]byte, 0, 2+len(modeBytes))
	frame = append(frame, ISSCommand, SubSetMode)
	frame = append(frame, modeBytes...)

	return frame, nil
}

// SPIModeBytes returns the Set Mode payload for SPI mode.
func SPIModeBytes(spiMode uint8, divisor byte) []byte {
	return []byte{ModeSPI + spiMode, divisor}
}

// IOModeBytes returns the Set Mode payload for I/O mode.
func IOModeBytes(ioType byte) []byte {
	return []byte{ModeIO, ioType}
}

// I2CModeBytes returns the Set Mode payload for an I2C mode.
func I2CModeBytes(i2cMode, ioType byte) []byte {
	return []byte{i2cMode, ioType}
}

// I2CModeByte maps a bus speed to its I2C mode byte.
// Software I2C supports 20, 50, 100 and 400 kHz; hardware I2C supports
// 100, 400 and 1000 kHz.
func I2CModeByte(speedKHz int, software bool) (byte, error) {
	if software {
		switch speedKHz {
		case 20:
			return ModeI2CSoft20k, nil
		case 50:
			return ModeI2CSoft50k, nil
		case 100:
			return ModeI2CSoft100k, nil
		case 400:
			return ModeI2CSoft400k, nil
		}
		return 0, fmt.Errorf("software I2C does not support %d kHz", speedKHz)
	}

	switch speedKHz {
	case 100:
		return ModeI2CHard100k, nil
	case 400:
		return ModeI2CHard400k, nil
	case 1000:
		return ModeI2CHard1000k, nil
	}
	return 0, fmt.Errorf("hardware I2C does not support %d kHz", speedKHz)
}

// BuildSPITransferCmd constructs an SPI transfer command frame.
// The adapter clocks out each data byte and returns one byte per byte sent.
//
// Frame structure:
//
//	[0x61][DATA...]
func BuildSPITransferCmd(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}
	if len(data) > MaxSPIPayload {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(data), MaxSPIPayload)
	}

	frame := make([]byte, 0, 1+len(data))
	frame = append(frame, CmdSPI)
	frame = append(frame, data...)

	return frame, nil
}

// BuildI2CSingleWriteCmd constructs a single byte write to a device without
// internal registers, such as a PCF8574 expander.
//
// Frame structure:
//
//	[0x53][ADDR<<1][VALUE]
func BuildI2CSingleWriteCmd(addr uint8, value byte) ([]byte, error) {
	wa, err := writeAddress(addr)
	if err != nil {
		return nil, err
	}
	return []byte{CmdI2CSingle, wa, value}, nil
}

// BuildI2CSingleReadCmd constructs a single byte read from a device without
// internal registers.
//
// Frame structure:
//
//	[0x53][ADDR<<1|1]
func BuildI2CSingleReadCmd(addr uint8) ([]byte, error) {
	ra, err := readAddress(addr)
	if err != nil {
		return nil, err
	}
	return []byte{CmdI2CSingle, ra}, nil
}

// BuildI2CWriteCmd constructs a multi-byte write to a device without
// internal registers.
//
// Frame structure:
//
//	[0x54][ADDR<<1][COUNT][DATA...]
func BuildI2CWriteCmd(addr uint8, data []byte) ([]byte, error) {
	wa, err := writeAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := checkI2CPayload(len(data)); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 3+len(data))
	frame = append(frame, CmdI2CNoReg, wa, byte(len(data)))
	frame = append(frame, data...)

	return frame, nil
}

// BuildI2CReadCmd constructs a multi-byte read from a device without
// internal registers.
//
// Frame structure:
//
//	[0x54][ADDR<<1|1][COUNT]
func BuildI2CReadCmd(addr uint8, n int) ([]byte, error) {
	ra, err := readAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := checkI2CPayload(n); err != nil {
		return nil, err
	}
	return []byte{CmdI2CNoReg, ra, byte(n)}, nil
}

// BuildI2CRegWriteCmd constructs a write to a device with 1-byte register
// addresses.
//
// Frame structure:
//
//	[0x55][ADDR<<1][REG][COUNT][DATA...]
func BuildI2CRegWriteCmd(addr, reg uint8, data []byte) ([]byte, error) {
	wa, err := writeAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := checkI2CPayload(len(data)); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 4+len(data))
	frame = append(frame, CmdI2CReg8, wa, reg, byte(len(data)))
	frame = append(frame, data...)

	return frame, nil
}

// BuildI2CRegReadCmd constructs a read from a device with 1-byte register
// addresses.
//
// Frame structure:
//
//	[0x55][ADDR<<1|1][REG][COUNT]
func BuildI2CRegReadCmd(addr, reg uint8, n int) ([]byte, error) {
	ra, err := readAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := checkI2CPayload(n); err != nil {
		return nil, err
	}
	return []byte{CmdI2CReg8, ra, reg, byte(n)}, nil
}

// BuildI2CReg16WriteCmd constructs a write to a device with 2-byte register
// addresses (high byte first).
//
// Frame structure:
//
//	[0x56][ADDR<<1][REG_H][REG_L][COUNT][DATA...]
func BuildI2CReg16WriteCmd(addr uint8, reg uint16, data []byte) ([]byte, error) {
	wa, err := writeAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := checkI2CPayload(len(data)); err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 5+len(data))
	frame = append(frame, CmdI2CReg16, wa, byte(reg>>8), byte(reg), byte(len(data)))
	frame = append(frame, data...)

	return frame, nil
}

// BuildI2CReg16ReadCmd constructs a read from a device with 2-byte register
// addresses.
//
// Frame structure:
//
//	[0x56][ADDR<<1|1][REG_H][REG_L][COUNT]
func BuildI2CReg16ReadCmd(addr uint8, reg uint16, n int) ([]byte, error) {
	ra, err := readAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := checkI2CPayload(n); err != nil {
		return nil, err
	}
	return []byte{CmdI2CReg16, ra, byte(reg >> 8), byte(reg), byte(n)}, nil
}

// BuildI2CTestCmd constructs a device presence check.
//
// Frame structure:
//
//	[0x58][ADDR<<1]
func BuildI2CTestCmd(addr uint8) ([]byte, error) {
	wa, err := writeAddress(addr)
	if err != nil {
		return nil, err
	}
	return []byte{CmdI2CTest, wa}, nil
}

// BuildSetPinsCmd constructs a Set Pins command. Bit 0 drives pin 1.
//
// Frame structure:
//
//	[0x63][PIN_STATES]
func BuildSetPinsCmd(state byte) []byte {
	return []byte{CmdSetPins, state & 0x0F}
}

// BuildGetPinsCmd constructs a Get Pins command.
//
// Frame structure:
//
//	[0x64]
func BuildGetPinsCmd() []byte {
	return []byte{CmdGetPins}
}

// BuildGetADCmd constructs a Get AD command for the analogue channel of the
// given pin (1-4).
//
// Frame structure:
//
//	[0x65][CHANNEL]
func BuildGetADCmd(channel uint8) ([]byte, error) {
	if channel < 1 || channel > NumPins {
		return nil, fmt.Errorf("channel %d is out of range 1-%d", channel, NumPins)
	}
	return []byte{CmdGetAD, channel}, nil
}

func writeAddress(addr uint8) (byte, error) {
	if addr > MaxI2CAddress {
		return 0, fmt.Errorf("I2C address 0x%02X is not a 7-bit address", addr)
	}
	return addr << 1, nil
}

func readAddress(addr uint8) (byte, error) {
	wa, err := writeAddress(addr)
	if err != nil {
		return 0, err
	}
	return wa | 0x01, nil
}

func checkI2CPayload(n int) error {
	if n <= 0 {
		return fmt.Errorf("byte count must be positive, got %d", n)
	}
	if n > MaxI2CPayload {
		return fmt.Errorf("byte count %d exceeds maximum %d bytes", n, MaxI2CPayload)
	}
	return nil
}
