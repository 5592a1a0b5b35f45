package usbiss

import (
	"fmt"
	"strings"

	"github.com/moffa90/go-usbiss/protocol"
)

// OperatingMode is one of SPIMode, I2CMode or IOMode.
// Exactly one is active on an Adapter at a time.
type OperatingMode interface {
	fmt.Stringer

	// modeBytes validates the mode and returns the Set Mode payload.
	modeBytes() ([]byte, error)
}

// PinFunction selects how an I/O pin is used. The values equal the two-bit
// IO_TYPE field sent to the adapter.
type PinFunction uint8

const (
	OutputLow    PinFunction = protocol.IOTypeOutputLow
	OutputHigh   PinFunction = protocol.IOTypeOutputHigh
	InputDigital PinFunction = protocol.IOTypeInput
	InputAnalog  PinFunction = protocol.IOTypeAnalogInput
)

func (f PinFunction) String() string {
	switch f {
	case OutputLow:
		return "outputL"
	case OutputHigh:
		return "outputH"
	case InputDigital:
		return "input"
	case InputAnalog:
		return "adc"
	default:
		return fmt.Sprintf("PinFunction(%d)", uint8(f))
	}
}

// ParsePinFunction parses the names "outputL", "outputH", "input" and "adc",
// ignoring case.
func ParsePinFunction(s string) (PinFunction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outputl":
		return OutputLow, nil
	case "outputh":
		return OutputHigh, nil
	case "input":
		return InputDigital, nil
	case "adc":
		return InputAnalog, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPinFunction, s)
}

// SPIMode configures the adapter as an SPI master.
type SPIMode struct {
	// Mode is the USB-ISS SPI mode, 0 to 3
	Mode uint8

	// Frequency is the SCK frequency in Hz. 6 MHz divided by it must be an
	// integer between 2 and 256.
	Frequency uint32
}

// Divisor returns the SCK divisor for s.Frequency.
func (s SPIMode) Divisor() (byte, error) {
	return SPIDivisor(s.Frequency)
}

// SpidevMode returns the Linux spidev mode equivalent to s.Mode. The USB-ISS
// numbers modes 1 and 2 the other way round.
func (s SPIMode) SpidevMode() uint8 {
	switch s.Mode {
	case 1:
		return 2
	case 2:
		return 1
	}
	return s.Mode
}

func (s SPIMode) String() string {
	return fmt.Sprintf("spi(mode=%d, freq=%dHz)", s.Mode, s.Frequency)
}

func (s SPIMode) modeBytes() ([]byte, error) {
	if s.Mode > 3 {
		return nil, &ConfigError{Field: "spi_mode", Err: fmt.Errorf("%w: got %d", ErrInvalidSPIMode, s.Mode)}
	}
	divisor, err := s.Divisor()
	if err != nil {
		return nil, err
	}
	return protocol.SPIModeBytes(s.Mode, divisor), nil
}

// SPIDivisor computes divisor = 6000000/freq - 1. The result must be exact
// and lie in [1,255].
func SPIDivisor(freq uint32) (byte, error) {
	if freq == 0 {
		return 0, configErr("freq", ErrMissingParameter)
	}
	if protocol.SPIClockHz%freq != 0 {
		return 0, &ConfigError{
			Field: "freq",
			Err:   fmt.Errorf("%w: 6000000/%d", ErrNonIntegralDivisor, freq),
		}
	}

	divisor := protocol.SPIClockHz/int(freq) - 1
	if divisor < protocol.MinSPIDivisor || divisor > protocol.MaxSPIDivisor {
		return 0, &ConfigError{
			Field: "freq",
			Err:   fmt.Errorf("%w: got %d", ErrDivisorOutOfRange, divisor),
		}
	}
	return byte(divisor), nil
}

// I2CMode configures the adapter as an I2C master.
type I2CMode struct {
	// SpeedKHz is the bus speed: 20, 50, 100 or 400 for software I2C;
	// 100, 400 or 1000 for hardware I2C
	SpeedKHz int

	// Software selects the bit-banged implementation
	Software bool

	// Spare configures the two I/O pins not used by the bus
	Spare [2]PinFunction
}

func (m I2CMode) String() string {
	kind := "hardware"
	if m.Software {
		kind = "software"
	}
	return fmt.Sprintf("i2c(%s, %dkHz)", kind, m.SpeedKHz)
}

func (m I2CMode) modeBytes() ([]byte, error) {
	if m.SpeedKHz == 0 {
		return nil, configErr("i2c_speed", ErrMissingParameter)
	}
	b, err := protocol.I2CModeByte(m.SpeedKHz, m.Software)
	if err != nil {
		return nil, &ConfigError{Field: "i2c_speed", Err: fmt.Errorf("%w: %v", ErrUnsupportedSpeed, err)}
	}
	ioType, err := packPins(m.Spare[:])
	if err != nil {
		return nil, err
	}
	return protocol.I2CModeBytes(b, ioType), nil
}

// IOMode configures all four pins as general purpose I/O.
type IOMode struct {
	Pins [protocol.NumPins]PinFunction
}

func (m IOMode) String() string {
	names := make([]string, len(m.Pins))
	for i, f := range m.Pins {
		names[i] = fmt.Sprintf("pin%d=%s", i+1, f)
	}
	return fmt.Sprintf("io(%s)", strings.Join(names, ", "))
}

// IOType returns the packed IO_TYPE byte, pin 1 in the low bits.
func (m IOMode) IOType() (byte, error) {
	return packPins(m.Pins[:])
}

func (m IOMode) modeBytes() ([]byte, error) {
	ioType, err := m.IOType()
	if err != nil {
		return nil, err
	}
	return protocol.IOModeBytes(ioType), nil
}

// initialLevels returns the pin levels the adapter drives after the mode is set.
func (m IOMode) initialLevels() byte {
	var levels byte
	for i, f := range m.Pins {
		if f == OutputHigh {
			levels |= 1 << i
		}
	}
	return levels
}

func packPins(pins []PinFunction) (byte, error) {
	var ioType byte
	for i, f := range pins {
		if f > InputAnalog {
			return 0, &ConfigError{
				Field: fmt.Sprintf("pin%d", i+1),
				Err:   fmt.Errorf("%w: %d", ErrUnknownPinFunction, uint8(f)),
			}
		}
		ioType |= byte(f) << (2 * i)
	}
	return ioType, nil
}

// ModeOptions are the caller-facing configuration options.
type ModeOptions struct {
	// ISSMode is "spi", "i2c" or "io"
	ISSMode string

	// SPIMode is required in SPI mode
	SPIMode *int

	// Freq is the SCK frequency in Hz, required in SPI mode
	Freq uint32

	// Pins holds "outputL", "outputH", "input" or "adc" for pins 1-4.
	// An empty entry leaves the pin as outputL.
	Pins [protocol.NumPins]string

	// I2CSpeed is the bus speed in kHz, required in I2C mode
	I2CSpeed int

	// I2CType is "H" for hardware (default) or "S" for software I2C
	I2CType string
}

// ModeFromOptions validates opts and builds the matching OperatingMode.
func ModeFromOptions(opts ModeOptions) (OperatingMode, error) {
	switch strings.ToLower(opts.ISSMode) {
	case "spi":
		if opts.SPIMode == nil {
			return nil, configErr("spi_mode", ErrMissingParameter)
		}
		if *opts.SPIMode < 0 || *opts.SPIMode > 3 {
			return nil, &ConfigError{Field: "spi_mode", Err: fmt.Errorf("%w: got %d", ErrInvalidSPIMode, *opts.SPIMode)}
		}
		if opts.Freq == 0 {
			return nil, configErr("freq", ErrMissingParameter)
		}
		mode := SPIMode{Mode: uint8(*opts.SPIMode), Frequency: opts.Freq}
		if _, err := mode.Divisor(); err != nil {
			return nil, err
		}
		return mode, nil

	case "io":
		var mode IOMode
		for i, name := range opts.Pins {
			if name == "" {
				continue
			}
			f, err := ParsePinFunction(name)
			if err != nil {
				return nil, &ConfigError{Field: fmt.Sprintf("pin%d", i+1), Err: err}
			}
			mode.Pins[i] = f
		}
		return mode, nil

	case "i2c":
		if opts.I2CSpeed == 0 {
			return nil, configErr("i2c_speed", ErrMissingParameter)
		}
		mode := I2CMode{SpeedKHz: opts.I2CSpeed}
		switch strings.ToUpper(opts.I2CType) {
		case "", "H":
		case "S":
			mode.Software = true
		default:
			return nil, &ConfigError{Field: "i2c_type", Err: fmt.Errorf("%w: %q", ErrUnknownMode, opts.I2CType)}
		}
		if _, err := mode.modeBytes(); err != nil {
			return nil, err
		}
		return mode, nil

	case "":
		return nil, configErr("iss_mode", ErrMissingParameter)
	}

	return nil, &ConfigError{Field: "iss_mode", Err: fmt.Errorf("%w: %q", ErrUnknownMode, opts.ISSMode)}
}
