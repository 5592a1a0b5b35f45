package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-usbiss/config"
	"github.com/moffa90/go-usbiss/usbiss"
)

func TestNewLoggerDefaultsToGlog(t *testing.T) {
	logger, closeLog := newLogger(config.LogConfig{})
	require.IsType(t, usbiss.GlogLogger{}, logger)
	require.NoError(t, closeLog())
}

func TestNewLoggerRotatingFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "usbiss-log")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "usbiss.log")
	logger, closeLog := newLogger(config.LogConfig{File: path, MaxSizeMB: 1})
	logger.Info("adapter identified", "serial", "00012345")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "INFO adapter identified serial=00012345")
}
