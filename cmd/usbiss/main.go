// Command usbiss is an interactive shell for a USB-ISS adapter.
//
// Usage:
//
//	usbiss [-config FILE] [-port DEVICE] [-simulate] [-e] [COMMAND ARGS...]
//
// With a command it runs that command and exits. Logging goes through glog;
// pass -logtostderr -v=2 to see every frame. Setting log.file in the
// configuration writes a rotating log file instead.
package main

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/moffa90/go-usbiss/config"
	"github.com/moffa90/go-usbiss/usbiss"
	"github.com/moffa90/go-usbiss/usbiss/usbisstest"
)

var (
	configFile string
	portName   string
	simulate   bool
)

func init() {
	flag.StringVar(&configFile, "config", configFile, "YAML configuration file.")
	flag.StringVar(&portName, "port", portName, "Serial device, overrides the configuration.")
	flag.BoolVar(&simulate, "simulate", simulate, "Talk to an in-memory adapter instead of a serial port.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(configFile)
	if err != nil {
		glog.Exit(err)
	}
	if portName != "" {
		cfg.Serial.Device = portName
	}

	logger, closeLog := newLogger(cfg.Log)
	defer closeLog()

	ctx := context.Background()
	opts := append(cfg.AdapterOptions(), usbiss.WithLogger(logger))

	var a *usbiss.Adapter
	if simulate {
		dev := usbisstest.NewDevice()
		dev.AddI2CTarget(cfg.LCD.Address)
		a, err = usbiss.New(ctx, dev, opts...)
	} else {
		a, err = usbiss.Open(ctx, &cfg.Serial, opts...)
	}
	if err != nil {
		glog.Exitf("open %s: %v", cfg.Serial.Device, err)
	}
	defer a.Close()

	mode, err := cfg.Mode()
	if err != nil {
		glog.Exit(err)
	}
	if mode != nil {
		if err := a.Configure(ctx, mode); err != nil {
			glog.Exitf("configure %s: %v", mode, err)
		}
	}

	if err := NewShell(a, cfg).Run(flag.Args()...); err != nil {
		glog.Error(err)
	}
}
