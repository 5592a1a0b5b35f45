package main

import (
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/moffa90/go-usbiss/config"
	"github.com/moffa90/go-usbiss/usbiss"
)

// newLogger returns a rotating file logger when a log file is configured,
// and glog otherwise. The returned close func flushes the file.
func newLogger(cfg config.LogConfig) (usbiss.Logger, func() error) {
	if cfg.File == "" {
		return usbiss.GlogLogger{}, func() error { return nil }
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return usbiss.NewWriterLogger(w, cfg.Verbose), w.Close
}
