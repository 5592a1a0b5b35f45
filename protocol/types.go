package protocol

// ModuleInfo identifies the adapter.
// Returned by the Get Info command.
type ModuleInfo struct {
	// ID is the module ID (7 for the USB-ISS)
	ID byte

	// Firmware is the firmware version
	Firmware byte

	// Mode is the operating mode byte currently active on the adapter
	Mode byte
}
