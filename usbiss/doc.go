// Package usbiss drives a Devantech USB-ISS multifunction adapter.
//
// # Overview
//
// The USB-ISS appears to the host as a serial port. Through it the host can:
//   - Read the module ID, firmware version, operating mode and serial number
//   - Select SPI, I2C or general purpose I/O mode
//   - Run full-duplex SPI transfers and I2C transactions
//   - Drive and read the four I/O pins, including analogue inputs
//
// # Basic Usage
//
//	a, err := usbiss.Open(ctx, serial.DefaultConfig("/dev/ttyACM0"),
//	    usbiss.WithLogger(usbiss.GlogLogger{}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	err = a.Configure(ctx, usbiss.SPIMode{Mode: 1, Frequency: 25000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	in, err := a.SPITransfer(ctx, []byte{0x45})
//
// # Operating Modes
//
// Exactly one mode is active at a time:
//
//	usbiss.SPIMode{Mode: 0, Frequency: 500000}
//	usbiss.I2CMode{SpeedKHz: 100}
//	usbiss.IOMode{Pins: [4]usbiss.PinFunction{usbiss.OutputLow, usbiss.InputAnalog}}
//
// Modes are validated before anything is sent. An SPI frequency is accepted
// only if 6 MHz divided by it is an integer between 2 and 256. Calling a
// transfer before Configure, or in the wrong mode, returns a ConfigError
// without touching the adapter.
//
// ModeFromOptions builds a mode from string options such as a config file
// provides.
//
// # Bus Adapters
//
// SPI and I2C return values implementing tinygo.org/x/drivers SPI and I2C,
// so sensor drivers written for microcontrollers can run on the host:
//
//	dev := shtc3.New(a.I2C())
//
// # Error Handling
//
// Errors fall into three groups:
//   - ConfigError: invalid parameters, wrong mode, or a mode the adapter rejected
//   - protocol.ProtocolError: a short or failed response from the adapter
//   - TransportError: the serial port failed; the Adapter refuses further I/O
//
// All wrap sentinels usable with errors.Is, e.g. ErrNonIntegralDivisor or
// protocol.ErrShortRead.
//
// # Testing
//
// Package usbisstest provides an in-memory adapter that answers every
// command the way the hardware does.
package usbiss
