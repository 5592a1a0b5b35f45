package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"tinygo.org/x/drivers/shtc3"

	"github.com/moffa90/go-usbiss/config"
	"github.com/moffa90/go-usbiss/hd44780"
	"github.com/moffa90/go-usbiss/usbiss"
)

const shellKey = "$shell"

var evalOnly bool

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// Shell wraps an ishell bound to one adapter.
type Shell struct {
	Interactive bool

	Shell   *ishell.Shell
	Adapter *usbiss.Adapter
	Config  *config.Config

	lcd *hd44780.Device
}

// NewShell creates a shell with every adapter command registered.
func NewShell(a *usbiss.Adapter, cfg *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Adapter:     a,
		Config:      cfg,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(fmt.Sprintf("usbiss %s > ", a.SerialNumber()))
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// Run processes args as one command, or starts the interactive shell.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

func shellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// withArgs wraps a command that needs at least n arguments.
func withArgs(n int, fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) < n {
			c.Err(fmt.Errorf("expected %d arguments, got %d", n, len(c.Args)))
			return
		}
		fn(c, shellFrom(c))
	}
}

var commands = []*ishell.Cmd{
	&InfoCmd,
	&ModeCmd,
	&SPICmd,
	&PinCmd,
	&ADCCmd,
	&I2CCmd,
	&LCDCmd,
	&SHTC3Cmd,
}

var (
	// InfoCmd prints the module identity.
	InfoCmd = ishell.Cmd{
		Name: "info",
		Help: "show module ID, firmware, mode and serial number",
		Func: withArgs(0, func(c *ishell.Context, s *Shell) {
			info, err := s.Adapter.Refresh(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			mode := "none"
			if m := s.Adapter.Mode(); m != nil {
				mode = m.String()
			}
			c.Printf("module id 0x%02X, firmware 0x%02X, mode byte 0x%02X (%s), serial %s\n",
				info.ID, info.Firmware, info.Mode, mode, s.Adapter.SerialNumber())
		}),
	}

	// ModeCmd selects the operating mode.
	ModeCmd = ishell.Cmd{
		Name:     "mode",
		Help:     "spi MODE FREQ | i2c SPEED [H|S] | io PIN1 PIN2 PIN3 PIN4",
		LongHelp: "Pin functions are outputL, outputH, input and adc.",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) {
			opts, err := modeOptions(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			mode, err := usbiss.ModeFromOptions(opts)
			if err != nil {
				c.Err(err)
				return
			}
			if err := s.Adapter.Configure(context.Background(), mode); err != nil {
				c.Err(err)
				return
			}
			s.lcd = nil
			c.Println(mode)
		}),
	}

	// SPICmd runs one SPI transfer.
	SPICmd = ishell.Cmd{
		Name:    "spi",
		Aliases: []string{"xfer"},
		Help:    "BYTE... (hex)",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) {
			out, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			in, err := s.Adapter.SPITransfer(context.Background(), out)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(formatBytes(in))
		}),
	}

	// PinCmd drives and reads the I/O pins.
	PinCmd = ishell.Cmd{
		Name: "pin",
		Help: "set|clear|get PIN, or state",
	}

	// ADCCmd reads an analogue input.
	ADCCmd = ishell.Cmd{
		Name: "adc",
		Help: "PIN",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) {
			pin, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			v, err := s.Adapter.ReadAnalog(context.Background(), pin)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d (%.3f V)\n", v, float64(v)*5.0/1023.0)
		}),
	}

	// I2CCmd talks to devices on the I2C bus.
	I2CCmd = ishell.Cmd{
		Name: "i2c",
		Help: "probe|scan|write|read|readreg|writereg",
	}

	// LCDCmd drives an HD44780 display on a PCF8574 backpack.
	LCDCmd = ishell.Cmd{
		Name: "lcd",
		Help: "init|print|clear|move|backlight",
	}

	// SHTC3Cmd reads a Sensirion SHTC3 through the tinygo driver.
	SHTC3Cmd = ishell.Cmd{
		Name: "shtc3",
		Help: "read temperature and humidity",
		Func: withArgs(0, func(c *ishell.Context, s *Shell) {
			sensor := shtc3.New(s.Adapter.I2C())
			if err := sensor.WakeUp(); err != nil {
				c.Err(err)
				return
			}
			defer sensor.Sleep()

			milliC, rhx100, err := sensor.ReadTemperatureHumidity()
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%.2f °C, %.2f %%RH\n", float64(milliC)/1000, float64(rhx100)/100)
		}),
	}
)

func init() {
	PinCmd.AddCmd(&ishell.Cmd{
		Name: "set",
		Help: "PIN",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) { setPin(c, s, true) }),
	})
	PinCmd.AddCmd(&ishell.Cmd{
		Name: "clear",
		Help: "PIN",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) { setPin(c, s, false) }),
	})
	PinCmd.AddCmd(&ishell.Cmd{
		Name: "get",
		Help: "PIN",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) {
			pin, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			high, err := s.Adapter.GetPin(context.Background(), pin)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(high)
		}),
	})
	PinCmd.AddCmd(&ishell.Cmd{
		Name: "state",
		Help: "show the cached pin levels",
		Func: withArgs(0, func(c *ishell.Context, s *Shell) {
			c.Printf("%04b\n", s.Adapter.PinState())
		}),
	})

	I2CCmd.AddCmd(&ishell.Cmd{
		Name: "probe",
		Help: "ADDR",
		Func: withArgs(1, func(c *ishell.Context, s *Shell) {
			addr, err := parseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			ok, err := s.Adapter.Probe(context.Background(), addr)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(ok)
		}),
	})
	I2CCmd.AddCmd(&ishell.Cmd{
		Name: "scan",
		Help: "probe every address from 0x08 to 0x77",
		Func: withArgs(0, func(c *ishell.Context, s *Shell) {
			var found []string
			for addr := uint8(0x08); addr <= 0x77; addr++ {
				ok, err := s.Adapter.Probe(context.Background(), addr)
				if err != nil {
					c.Err(err)
					return
				}
				if ok {
					found = append(found, fmt.Sprintf("0x%02X", addr))
				}
			}
			c.Println(strings.Join(found, " "))
		}),
	})
	I2CCmd.AddCmd(&ishell.Cmd{
		Name: "write",
		Help: "ADDR BYTE...",
		Func: withArgs(2, func(c *ishell.Context, s *Shell) {
			addr, err := parseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			data, err := parseBytes(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			if len(data) == 1 {
				err = s.Adapter.WriteRawByte(context.Background(), addr, data[0])
			} else {
				err = s.Adapter.I2CWrite(context.Background(), addr, data)
			}
			if err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	})
	I2CCmd.AddCmd(&ishell.Cmd{
		Name: "read",
		Help: "ADDR N",
		Func: withArgs(2, func(c *ishell.Context, s *Shell) {
			addr, err := parseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			n, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			data, err := s.Adapter.I2CRead(context.Background(), addr, n)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(formatBytes(data))
		}),
	})
	I2CCmd.AddCmd(&ishell.Cmd{
		Name: "readreg",
		Help: "ADDR REG N",
		Func: withArgs(3, func(c *ishell.Context, s *Shell) {
			b, err := parseBytes(c.Args[:2])
			if err != nil {
				c.Err(err)
				return
			}
			n, err := strconv.Atoi(c.Args[2])
			if err != nil {
				c.Err(err)
				return
			}
			data, err := s.Adapter.ReadRegister(context.Background(), b[0], b[1], n)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(formatBytes(data))
		}),
	})
	I2CCmd.AddCmd(&ishell.Cmd{
		Name: "writereg",
		Help: "ADDR REG BYTE...",
		Func: withArgs(3, func(c *ishell.Context, s *Shell) {
			b, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err := s.Adapter.WriteRegister(context.Background(), b[0], b[1], b[2:]); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	})

	LCDCmd.AddCmd(&ishell.Cmd{
		Name: "init",
		Help: "[ADDR]",
		Func: withArgs(0, func(c *ishell.Context, s *Shell) {
			addr := s.Config.LCD.Address
			if len(c.Args) > 0 {
				v, err := parseByte(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				addr = v
			}
			lcd, err := hd44780.New(s.Adapter.Device(addr), s.Config.LCD.Lines, s.Config.LCD.Columns)
			if err != nil {
				c.Err(err)
				return
			}
			s.lcd = lcd
			c.Printf("%dx%d display at 0x%02X\n", lcd.Columns(), lcd.Lines(), addr)
		}),
	})
	LCDCmd.AddCmd(&ishell.Cmd{
		Name: "print",
		Help: `TEXT (\n starts a new line)`,
		Func: withLCD(1, func(c *ishell.Context, lcd *hd44780.Device) error {
			text := strings.ReplaceAll(strings.Join(c.Args, " "), `\n`, "\n")
			return lcd.PutString(text)
		}),
	})
	LCDCmd.AddCmd(&ishell.Cmd{
		Name: "clear",
		Func: withLCD(0, func(c *ishell.Context, lcd *hd44780.Device) error {
			return lcd.Clear()
		}),
	})
	LCDCmd.AddCmd(&ishell.Cmd{
		Name: "move",
		Help: "COLUMN LINE",
		Func: withLCD(2, func(c *ishell.Context, lcd *hd44780.Device) error {
			x, err := strconv.Atoi(c.Args[0])
			if err != nil {
				return err
			}
			y, err := strconv.Atoi(c.Args[1])
			if err != nil {
				return err
			}
			return lcd.MoveTo(x, y)
		}),
	})
	LCDCmd.AddCmd(&ishell.Cmd{
		Name: "backlight",
		Help: "on|off",
		Func: withLCD(1, func(c *ishell.Context, lcd *hd44780.Device) error {
			switch c.Args[0] {
			case "on":
				return lcd.BacklightOn()
			case "off":
				return lcd.BacklightOff()
			}
			return fmt.Errorf("expected on or off, got %q", c.Args[0])
		}),
	})
}

func withLCD(n int, fn func(c *ishell.Context, lcd *hd44780.Device) error) func(c *ishell.Context) {
	return withArgs(n, func(c *ishell.Context, s *Shell) {
		if s.lcd == nil {
			c.Err(fmt.Errorf("lcd not initialized, run lcd init"))
			return
		}
		if err := fn(c, s.lcd); err != nil {
			c.Err(err)
		}
	})
}

func setPin(c *ishell.Context, s *Shell, level bool) {
	pin, err := strconv.Atoi(c.Args[0])
	if err != nil {
		c.Err(err)
		return
	}
	if err := s.Adapter.SetPin(context.Background(), pin, level); err != nil {
		c.Err(err)
		return
	}
	c.Printf("%04b\n", s.Adapter.PinState())
}

// modeOptions maps shell arguments to mode options.
func modeOptions(args []string) (usbiss.ModeOptions, error) {
	opts := usbiss.ModeOptions{ISSMode: args[0]}
	rest := args[1:]

	switch strings.ToLower(args[0]) {
	case "spi":
		if len(rest) > 0 {
			m, err := strconv.Atoi(rest[0])
			if err != nil {
				return opts, fmt.Errorf("spi mode: %w", err)
			}
			opts.SPIMode = &m
		}
		if len(rest) > 1 {
			f, err := strconv.ParseUint(rest[1], 10, 32)
			if err != nil {
				return opts, fmt.Errorf("freq: %w", err)
			}
			opts.Freq = uint32(f)
		}
	case "i2c":
		if len(rest) > 0 {
			speed, err := strconv.Atoi(rest[0])
			if err != nil {
				return opts, fmt.Errorf("i2c speed: %w", err)
			}
			opts.I2CSpeed = speed
		}
		if len(rest) > 1 {
			opts.I2CType = rest[1]
		}
	case "io":
		copy(opts.Pins[:], rest)
	}
	return opts, nil
}

// parseByte accepts hex with or without a 0x prefix.
func parseByte(s string) (byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return byte(v), nil
}

func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, len(args))
	for i, a := range args {
		b, err := parseByte(a)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func formatBytes(b []byte) string {
	return fmt.Sprintf("% X", b)
}
