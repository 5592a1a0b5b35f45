// Package hd44780 drives an HD44780 character LCD behind a PCF8574 I2C port
// expander, the common "I2C backpack" module.
//
// The expander's eight outputs carry RS, RW, E, the backlight and the four
// data lines, so every LCD instruction becomes a series of single byte
// writes. Any Expander can carry them; with a USB-ISS in I2C mode:
//
//	a.Configure(ctx, usbiss.I2CMode{SpeedKHz: 100})
//	lcd, err := hd44780.New(a.Device(hd44780.DefaultAddress), 2, 16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lcd.PutString("Hello\nworld")
package hd44780
