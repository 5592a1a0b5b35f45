package usbisstest

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-usbiss/protocol"
)

func send(t *testing.T, d *Device, frame []byte) []byte {
	t.Helper()
	_, err := d.Write(frame)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := d.Read(buf)
	if err == io.EOF {
		return nil
	}
	require.NoError(t, err)
	return buf[:n]
}

func setMode(t *testing.T, d *Device, modeBytes []byte) []byte {
	t.Helper()
	frame, err := protocol.BuildModeSetCmd(modeBytes)
	require.NoError(t, err)
	return send(t, d, frame)
}

func TestIdentify(t *testing.T) {
	d := NewDevice()

	require.Equal(t, []byte{7, 0x02, protocol.ModeIO}, send(t, d, protocol.BuildInfoCmd()))
	require.Equal(t, []byte(DefaultSerial), send(t, d, protocol.BuildSerialCmd()))
	require.Len(t, d.Frames(), 2)
}

func TestReadEmptyReturnsEOF(t *testing.T) {
	d := NewDevice()
	n, err := d.Read(make([]byte, 4))
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestModeSet(t *testing.T) {
	d := NewDevice()

	resp := setMode(t, d, protocol.IOModeBytes(0x55))
	require.Equal(t, []byte{protocol.AckOK, protocol.ModeIO}, resp)
	require.Equal(t, byte(0x55), d.IOType())
	require.Equal(t, byte(0x0F), d.Outputs(), "output-high pins start driven")

	resp = setMode(t, d, []byte{0x25, 0x00})
	require.Equal(t, byte(protocol.NackFail), resp[0])
	require.Equal(t, byte(protocol.ModeIO), d.Mode(), "rejected mode leaves state alone")

	d.FailModeSet(protocol.ErrCodeUnknownCommand)
	resp = setMode(t, d, protocol.SPIModeBytes(0, 239))
	require.Equal(t, protocol.EncodeModeSetNack(protocol.ErrCodeUnknownCommand), resp)
}

func TestPins(t *testing.T) {
	d := NewDevice()
	// pin 1 output, pin 2 input, pins 3-4 output
	setMode(t, d, protocol.IOModeBytes(0x08))

	require.Equal(t, []byte{protocol.AckOK}, send(t, d, protocol.BuildSetPinsCmd(0x0D)))
	d.SetInputs(0x02)
	require.Equal(t, []byte{0x0F}, send(t, d, protocol.BuildGetPinsCmd()))

	d.SetInputs(0x00)
	require.Equal(t, []byte{0x0D}, send(t, d, protocol.BuildGetPinsCmd()))
}

func TestAnalog(t *testing.T) {
	d := NewDevice()
	setMode(t, d, protocol.IOModeBytes(0xFF))
	d.SetAnalog(3, 0x3FF)

	frame, err := protocol.BuildGetADCmd(3)
	require.NoError(t, err)
	require.Equal(t, []byte{0x03, 0xFF}, send(t, d, frame))
}

func TestSPILoopbackAndResponder(t *testing.T) {
	d := NewDevice()
	setMode(t, d, protocol.SPIModeBytes(1, 239))

	frame, err := protocol.BuildSPITransferCmd([]byte{0x45, 0x00})
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.AckOK, 0x45, 0x00}, send(t, d, frame))

	d.SetSPIResponder(func(out []byte) []byte { return []byte{0xAA} })
	require.Equal(t, []byte{protocol.AckOK, 0xAA, 0x00}, send(t, d, frame), "short replies are zero padded")
}

func TestI2CTargets(t *testing.T) {
	d := NewDevice()
	setMode(t, d, protocol.I2CModeBytes(protocol.ModeI2CHard100k, 0x00))
	target := d.AddI2CTarget(0x27)
	target.Value = 0x5A

	probe, err := protocol.BuildI2CTestCmd(0x27)
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.AckOK}, send(t, d, probe))

	absent, err := protocol.BuildI2CTestCmd(0x28)
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.NackFail}, send(t, d, absent))

	write, err := protocol.BuildI2CSingleWriteCmd(0x27, 0x08)
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.AckOK}, send(t, d, write))
	require.Equal(t, []byte{0x08}, target.Written)

	read, err := protocol.BuildI2CSingleReadCmd(0x27)
	require.NoError(t, err)
	require.Equal(t, []byte{0x5A}, send(t, d, read))

	regWrite, err := protocol.BuildI2CRegWriteCmd(0x27, 0x10, []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.AckOK}, send(t, d, regWrite))

	regRead, err := protocol.BuildI2CRegReadCmd(0x27, 0x10, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, send(t, d, regRead))

	missing, err := protocol.BuildI2CSingleReadCmd(0x28)
	require.NoError(t, err)
	require.Nil(t, send(t, d, missing), "reads from an absent device get no reply")
}

func TestFaults(t *testing.T) {
	d := NewDevice()

	d.SetSilent(true)
	require.Nil(t, send(t, d, protocol.BuildInfoCmd()))
	d.SetSilent(false)

	boom := errors.New("unplugged")
	d.SetWriteError(boom)
	_, err := d.Write(protocol.BuildInfoCmd())
	require.Equal(t, boom, err)
	d.SetWriteError(nil)

	require.NoError(t, d.Close())
	require.Equal(t, 1, d.Closes())
	_, err = d.Write(protocol.BuildInfoCmd())
	require.Equal(t, io.ErrClosedPipe, err)
}
