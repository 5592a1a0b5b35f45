// Package protocol implements the USB-ISS command protocol.
//
// This package provides functions to build command frames and parse response
// bytes for the Devantech USB-ISS multifunction USB communications module.
// It performs no I/O.
//
// # Protocol Overview
//
// Management commands are prefixed with 0x5A:
//
//	Get info:          [0x5A][0x01]             -> [ID][FIRMWARE][MODE]
//	Set mode:          [0x5A][0x02][B0][B1]     -> [0xFF][ECHO] or [0x00][ERROR]
//	Get serial number: [0x5A][0x03]             -> 8 ASCII bytes
//
// Data commands start with their own opcode:
//
//	SPI transfer:      [0x61][D0..Dn]           -> [STATUS][R0..Rn]
//	I2C single byte:   [0x53][ADDR][VALUE]      -> [ACK]
//	Set pins:          [0x63][STATES]           -> [ACK]
//	Get pins:          [0x64]                   -> [STATES]
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame := protocol.BuildInfoCmd()
//	frame, err := protocol.BuildModeSetCmd(protocol.SPIModeBytes(1, 239))
//	frame, err := protocol.BuildSPITransferCmd([]byte{0x45})
//
// # Response Parsers
//
// Use the Parse* functions to validate and decode responses:
//
//	info, err := protocol.ParseInfoResponse(raw)
//	err := protocol.ParseModeSetResponse(raw)
//	data, err := protocol.ParseSPIResponse(raw, 1)
//
// # Error Handling
//
// Adapter-reported failures are returned as *ProtocolError wrapping one of
// the sentinel errors, so callers can match with errors.Is:
//
//	if errors.Is(err, protocol.ErrUnknownCommand) {
//	    // the firmware does not support the requested mode
//	}
//
// # Reference
//
// https://www.robot-electronics.co.uk/htm/usb_iss_tech.htm
package protocol
