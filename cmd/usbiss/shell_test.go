package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-usbiss/usbiss"
)

func TestParseByte(t *testing.T) {
	tests := map[string]byte{
		"45":   0x45,
		"0x45": 0x45,
		"0XFF": 0xFF,
		"a":    0x0A,
	}
	for in, want := range tests {
		got, err := parseByte(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "100", "zz"} {
		_, err := parseByte(in)
		require.Error(t, err, in)
	}
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "45 0A FF", formatBytes([]byte{0x45, 0x0A, 0xFF}))
}

func TestModeOptions(t *testing.T) {
	tests := []struct {
		args []string
		want usbiss.OperatingMode
	}{
		{[]string{"spi", "1", "25000"}, usbiss.SPIMode{Mode: 1, Frequency: 25000}},
		{[]string{"i2c", "400", "S"}, usbiss.I2CMode{SpeedKHz: 400, Software: true}},
		{[]string{"i2c", "100"}, usbiss.I2CMode{SpeedKHz: 100}},
		{[]string{"io", "outputH", "input"}, usbiss.IOMode{Pins: [4]usbiss.PinFunction{usbiss.OutputHigh, usbiss.InputDigital}}},
	}

	for _, tt := range tests {
		opts, err := modeOptions(tt.args)
		require.NoError(t, err)
		mode, err := usbiss.ModeFromOptions(opts)
		require.NoError(t, err)
		require.Equal(t, tt.want, mode)
	}

	opts, err := modeOptions([]string{"spi", "1"})
	require.NoError(t, err)
	_, err = usbiss.ModeFromOptions(opts)
	require.Error(t, err, "frequency is required")

	_, err = modeOptions([]string{"spi", "one"})
	require.Error(t, err)
}
