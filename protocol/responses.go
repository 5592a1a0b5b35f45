package protocol

import (
	"fmt"
)

// ParseInfoResponse parses the Get Info response.
//
// Data format (3 bytes):
//
//	[MODULE_ID][FIRMWARE][MODE]
func ParseInfoResponse(raw []byte) (*ModuleInfo, error) {
	if len(raw) < InfoResponseSize {
		return nil, shortRead("get info", len(raw), InfoResponseSize)
	}

	return &ModuleInfo{
		ID:       raw[0],
		Firmware: raw[1],
		Mode:     raw[2],
	}, nil
}

// ParseSerialResponse parses the Get Serial Number response.
// The adapter returns 8 ASCII digits.
func ParseSerialResponse(raw []byte) (string, error) {
	if len(raw) < SerialResponseSize {
		return "", shortRead("get serial number", len(raw), SerialResponseSize)
	}
	return string(raw[:SerialResponseSize]), nil
}

// ParseModeSetResponse parses the Set Mode response.
//
// Data format (2 bytes):
//
//	[0xFF][MODE_ECHO]   accepted
//	[0x00][ERROR_CODE]  rejected
//
// Any nonzero first byte is treated as acceptance.
func ParseModeSetResponse(raw []byte) error {
	if len(raw) < ModeSetResponseSize {
		return shortRead("set mode", len(raw), ModeSetResponseSize)
	}

	if raw[0] != 0 {
		return nil
	}

	return &ProtocolError{
		Operation: "set mode",
		Err:       modeSetError(raw[1]),
		Code:      raw[1],
	}
}

// ParseSPIResponse parses an SPI transfer response and returns the n bytes
// clocked in, in the order they were received.
//
// Data format (1+n bytes):
//
//	[STATUS][DATA...]
//
// A missing or zero status byte is a transmission error.
func ParseSPIResponse(raw []byte, n int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, &ProtocolError{
			Operation: "spi transfer",
			Err:       fmt.Errorf("%w: no bytes received", ErrTransmission),
		}
	}
	if raw[0] == NackFail {
		return nil, &ProtocolError{Operation: "spi transfer", Err: ErrTransmission}
	}
	if len(raw) < 1+n {
		return nil, shortRead("spi transfer", len(raw), 1+n)
	}

	data := make([]byte, n)
	copy(data, raw[1:1+n])
	return data, nil
}

// ParseAckResponse parses a single status byte response.
// Nonzero means the command was acknowledged.
func ParseAckResponse(op string, raw []byte) error {
	if len(raw) < AckResponseSize {
		return shortRead(op, len(raw), AckResponseSize)
	}
	if raw[0] == NackFail {
		return &ProtocolError{Operation: op, Err: ErrTransmission}
	}
	return nil
}

// ParseDataResponse checks that a read returned exactly n data bytes.
// The adapter returns no status byte for I2C reads.
func ParseDataResponse(op string, raw []byte, n int) ([]byte, error) {
	if len(raw) < n {
		return nil, shortRead(op, len(raw), n)
	}

	data := make([]byte, n)
	copy(data, raw[:n])
	return data, nil
}

// ParseGetPinsResponse parses the Get Pins response. Bit 0 is pin 1.
func ParseGetPinsResponse(raw []byte) (byte, error) {
	if len(raw) < 1 {
		return 0, shortRead("get pins", len(raw), 1)
	}
	return raw[0] & 0x0F, nil
}

// ParseADResponse parses the Get AD response.
//
// Data format (2 bytes, big-endian):
//
//	[HIGH][LOW]
func ParseADResponse(raw []byte) (uint16, error) {
	if len(raw) < ADResponseSize {
		return 0, shortRead("get analogue", len(raw), ADResponseSize)
	}
	return uint16(raw[0])<<8 | uint16(raw[1]), nil
}

// EncodeInfo encodes a Get Info response as the adapter sends it.
func EncodeInfo(info ModuleInfo) []byte {
	return []byte{info.ID, info.Firmware, info.Mode}
}

// EncodeModeSetAck encodes an accepted Set Mode response.
func EncodeModeSetAck(echo byte) []byte {
	return []byte{AckOK, echo}
}

// EncodeModeSetNack encodes a rejected Set Mode response.
func EncodeModeSetNack(code byte) []byte {
	return []byte{NackFail, code}
}

// EncodeSPIResponse encodes a successful SPI transfer response.
func EncodeSPIResponse(data []byte) []byte {
	resp := make([]byte, 0, 1+len(data))
	resp = append(resp, AckOK)
	return append(resp, data...)
}
