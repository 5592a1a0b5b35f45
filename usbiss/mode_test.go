package usbiss

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSPIDivisor(t *testing.T) {
	tests := []struct {
		freq    uint32
		want    byte
		wantErr error
	}{
		{freq: 25000, want: 239},
		{freq: 3000000, want: 1},
		{freq: 23437, wantErr: ErrNonIntegralDivisor},
		{freq: 500000, want: 11},
		{freq: 1000000, want: 5},
		{freq: 6000000, wantErr: ErrDivisorOutOfRange},
		{freq: 20000, wantErr: ErrDivisorOutOfRange},
		{freq: 7, wantErr: ErrNonIntegralDivisor},
		{freq: 0, wantErr: ErrMissingParameter},
	}

	for _, tt := range tests {
		got, err := SPIDivisor(tt.freq)
		if tt.wantErr != nil {
			require.Truef(t, errors.Is(err, tt.wantErr), "freq %d: got %v", tt.freq, err)
			require.True(t, IsConfigError(err))
			continue
		}
		require.NoError(t, err)
		require.Equalf(t, tt.want, got, "freq %d", tt.freq)
	}
}

func TestSPIDivisorProperty(t *testing.T) {
	// Every accepted frequency satisfies 6000000 == freq * (divisor + 1).
	for freq := uint32(23000); freq <= 3000000; freq += 997 {
		d, err := SPIDivisor(freq)
		if err != nil {
			continue
		}
		require.Equal(t, uint32(6000000), freq*(uint32(d)+1))
		require.True(t, d >= 1)
	}

	for d := 1; d <= 255; d++ {
		freq := uint32(6000000 / (d + 1))
		if 6000000%(d+1) != 0 {
			continue
		}
		got, err := SPIDivisor(freq)
		require.NoError(t, err)
		require.Equal(t, byte(d), got)
	}
}

func TestSpidevMode(t *testing.T) {
	for mode, want := range []uint8{0, 2, 1, 3} {
		require.Equal(t, want, SPIMode{Mode: uint8(mode)}.SpidevMode())
	}
}

func TestIOType(t *testing.T) {
	tests := []struct {
		pins [4]PinFunction
		want byte
	}{
		{[4]PinFunction{}, 0x00},
		{[4]PinFunction{OutputLow, OutputHigh, InputDigital, InputAnalog}, 0xE4},
		{[4]PinFunction{InputDigital, InputDigital, InputDigital, InputDigital}, 0xAA},
		{[4]PinFunction{InputAnalog, OutputLow, OutputLow, OutputLow}, 0x03},
		{[4]PinFunction{OutputLow, OutputLow, OutputLow, OutputHigh}, 0x40},
	}

	for _, tt := range tests {
		got, err := IOMode{Pins: tt.pins}.IOType()
		require.NoError(t, err)
		require.Equalf(t, tt.want, got, "pins %v", tt.pins)
	}
}

func TestParsePinFunction(t *testing.T) {
	tests := map[string]PinFunction{
		"outputL": OutputLow,
		"OUTPUTH": OutputHigh,
		"input":   InputDigital,
		" adc ":   InputAnalog,
	}
	for in, want := range tests {
		got, err := ParsePinFunction(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.NotEmpty(t, got.String())
	}

	_, err := ParsePinFunction("pwm")
	require.True(t, errors.Is(err, ErrUnknownPinFunction))
}

func TestModeStrings(t *testing.T) {
	require.Equal(t, "spi(mode=1, freq=25000Hz)", SPIMode{Mode: 1, Frequency: 25000}.String())
	require.Equal(t, "i2c(software, 50kHz)", I2CMode{SpeedKHz: 50, Software: true}.String())
	require.Equal(t, "io(pin1=outputL, pin2=outputH, pin3=input, pin4=adc)",
		IOMode{Pins: [4]PinFunction{OutputLow, OutputHigh, InputDigital, InputAnalog}}.String())
	require.Equal(t, "PinFunction(7)", PinFunction(7).String())
}

func intPtr(v int) *int { return &v }

func TestModeFromOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    ModeOptions
		want    OperatingMode
		wantErr error
	}{
		{
			name: "spi",
			opts: ModeOptions{ISSMode: "spi", SPIMode: intPtr(1), Freq: 25000},
			want: SPIMode{Mode: 1, Frequency: 25000},
		},
		{
			name: "spi upper case",
			opts: ModeOptions{ISSMode: "SPI", SPIMode: intPtr(0), Freq: 500000},
			want: SPIMode{Mode: 0, Frequency: 500000},
		},
		{
			name:    "spi without mode",
			opts:    ModeOptions{ISSMode: "spi", Freq: 25000},
			wantErr: ErrMissingParameter,
		},
		{
			name:    "spi without freq",
			opts:    ModeOptions{ISSMode: "spi", SPIMode: intPtr(0)},
			wantErr: ErrMissingParameter,
		},
		{
			name:    "spi mode out of range",
			opts:    ModeOptions{ISSMode: "spi", SPIMode: intPtr(5), Freq: 25000},
			wantErr: ErrInvalidSPIMode,
		},
		{
			name:    "spi bad divisor",
			opts:    ModeOptions{ISSMode: "spi", SPIMode: intPtr(0), Freq: 23437},
			wantErr: ErrNonIntegralDivisor,
		},
		{
			name: "io",
			opts: ModeOptions{ISSMode: "io", Pins: [4]string{"outputL", "outputH", "input", "adc"}},
			want: IOMode{Pins: [4]PinFunction{OutputLow, OutputHigh, InputDigital, InputAnalog}},
		},
		{
			name: "io defaults",
			opts: ModeOptions{ISSMode: "io", Pins: [4]string{"", "input"}},
			want: IOMode{Pins: [4]PinFunction{OutputLow, InputDigital, OutputLow, OutputLow}},
		},
		{
			name:    "io bad pin",
			opts:    ModeOptions{ISSMode: "io", Pins: [4]string{"outputL", "pwm"}},
			wantErr: ErrUnknownPinFunction,
		},
		{
			name: "i2c hardware default",
			opts: ModeOptions{ISSMode: "i2c", I2CSpeed: 400},
			want: I2CMode{SpeedKHz: 400},
		},
		{
			name: "i2c software",
			opts: ModeOptions{ISSMode: "i2c", I2CSpeed: 50, I2CType: "s"},
			want: I2CMode{SpeedKHz: 50, Software: true},
		},
		{
			name:    "i2c without speed",
			opts:    ModeOptions{ISSMode: "i2c"},
			wantErr: ErrMissingParameter,
		},
		{
			name:    "i2c bad type",
			opts:    ModeOptions{ISSMode: "i2c", I2CSpeed: 100, I2CType: "X"},
			wantErr: ErrUnknownMode,
		},
		{
			name:    "i2c unsupported speed",
			opts:    ModeOptions{ISSMode: "i2c", I2CSpeed: 50},
			wantErr: ErrUnsupportedSpeed,
		},
		{
			name:    "missing mode",
			opts:    ModeOptions{},
			wantErr: ErrMissingParameter,
		},
		{
			name:    "unknown mode",
			opts:    ModeOptions{ISSMode: "uart"},
			wantErr: ErrUnknownMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModeFromOptions(tt.opts)
			if tt.wantErr != nil {
				require.Truef(t, errors.Is(err, tt.wantErr), "got %v", err)
				require.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
