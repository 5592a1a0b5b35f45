package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInfoResponse(t *testing.T) {
	info, err := ParseInfoResponse([]byte{0x07, 0x02, 0x01})
	require.NoError(t, err)
	require.Equal(t, &ModuleInfo{ID: 7, Firmware: 0x02, Mode: 0x01}, info)

	for _, raw := range [][]byte{nil, {0x07}, {0x07, 0x02}} {
		_, err := ParseInfoResponse(raw)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrShortRead), "got %v", err)
		require.True(t, IsProtocolError(err))
	}
}

func TestParseSerialResponse(t *testing.T) {
	serial, err := ParseSerialResponse([]byte("00012345"))
	require.NoError(t, err)
	require.Equal(t, "00012345", serial)

	_, err = ParseSerialResponse([]byte("0001"))
	require.True(t, errors.Is(err, ErrShortRead))
}

func TestParseModeSetResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		wantErr error
	}{
		{name: "accepted", raw: []byte{0xFF, 0x91}},
		{name: "accepted any echo", raw: []byte{0xFF, 0x00}},
		{name: "nonzero first byte", raw: []byte{0x01, 0x00}},
		{name: "unknown command", raw: []byte{0x00, 0x05}, wantErr: ErrUnknownCommand},
		{name: "internal error 1", raw: []byte{0x00, 0x06}, wantErr: ErrInternal1},
		{name: "internal error 2", raw: []byte{0x00, 0x07}, wantErr: ErrInternal2},
		{name: "undocumented", raw: []byte{0x00, 0x09}, wantErr: ErrUndocumented},
		{name: "undocumented zero code", raw: []byte{0x00, 0x00}, wantErr: ErrUndocumented},
		{name: "short", raw: []byte{0xFF}, wantErr: ErrShortRead},
		{name: "empty", raw: nil, wantErr: ErrShortRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseModeSetResponse(tt.raw)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Truef(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestModeSetRoundTrip(t *testing.T) {
	for echo := 1; echo <= 0xFF; echo++ {
		require.NoError(t, ParseModeSetResponse(EncodeModeSetAck(byte(echo))))
	}

	err := ParseModeSetResponse(EncodeModeSetNack(ErrCodeInternal2))
	var pe *ProtocolError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, byte(ErrCodeInternal2), pe.Code)
	require.Equal(t, "set mode", pe.Operation)
	require.Contains(t, err.Error(), "(0x07)")
}

func TestParseSPIResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		n       int
		want    []byte
		wantErr error
	}{
		{name: "single byte", raw: []byte{0xFF, 0x99}, n: 1, want: []byte{0x99}},
		{name: "order preserved", raw: []byte{0xFF, 1, 2, 3}, n: 3, want: []byte{1, 2, 3}},
		{name: "extra bytes ignored", raw: []byte{0xFF, 1, 2}, n: 1, want: []byte{1}},
		{name: "no bytes", raw: nil, n: 1, wantErr: ErrTransmission},
		{name: "status zero", raw: []byte{0x00, 0x99}, n: 1, wantErr: ErrTransmission},
		{name: "short", raw: []byte{0xFF, 1}, n: 3, wantErr: ErrShortRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ParseSPIResponse(tt.raw, tt.n)
			if tt.wantErr != nil {
				require.Truef(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, data)
		})
	}

	data, err := ParseSPIResponse(EncodeSPIResponse([]byte{0xAB, 0xCD}), 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xCD}, data)
}

func TestParseAckResponse(t *testing.T) {
	require.NoError(t, ParseAckResponse("i2c write", []byte{0xFF}))
	require.NoError(t, ParseAckResponse("i2c write", []byte{0x01}))

	err := ParseAckResponse("i2c write", []byte{0x00})
	require.True(t, errors.Is(err, ErrTransmission))
	require.Contains(t, err.Error(), "i2c write failed")

	err = ParseAckResponse("i2c write", nil)
	require.True(t, errors.Is(err, ErrShortRead))
}

func TestParseDataResponse(t *testing.T) {
	data, err := ParseDataResponse("i2c read", []byte{1, 2, 3}, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)

	_, err = ParseDataResponse("i2c read", []byte{1}, 3)
	require.True(t, errors.Is(err, ErrShortRead))
	require.Contains(t, err.Error(), "got 1 bytes, expected 3")
}

func TestParsePinResponses(t *testing.T) {
	state, err := ParseGetPinsResponse([]byte{0xF5})
	require.NoError(t, err)
	require.Equal(t, byte(0x05), state)

	_, err = ParseGetPinsResponse(nil)
	require.True(t, errors.Is(err, ErrShortRead))

	v, err := ParseADResponse([]byte{0x03, 0xFF})
	require.NoError(t, err)
	require.Equal(t, uint16(1023), v)

	_, err = ParseADResponse([]byte{0x03})
	require.True(t, errors.Is(err, ErrShortRead))
}

func TestEncodeInfo(t *testing.T) {
	info := ModuleInfo{ID: 7, Firmware: 2, Mode: ModeIO}
	got, err := ParseInfoResponse(EncodeInfo(info))
	require.NoError(t, err)
	require.Equal(t, info, *got)
}
