package usbiss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/moffa90/go-usbiss/protocol"
	"github.com/moffa90/go-usbiss/serial"
)

// Adapter is a handle to one USB-ISS module. It owns the transport and
// caches the module identity read at construction.
//
// Adapter is not safe for concurrent use. The module cannot interleave
// command/response pairs, so callers must serialize access.
type Adapter struct {
	port   io.ReadWriteCloser
	config Config

	info   protocol.ModuleInfo
	serial string

	mode OperatingMode
	pins byte

	err    error
	closed bool
}

// flusher is implemented by transports that can discard unread input, such
// as serial.Port.
type flusher interface {
	Flush() error
}

// New identifies the module on port and returns an Adapter that owns it.
// No operating mode is selected; call Configure before any transfer.
//
// If identification fails the port is left open and still belongs to the
// caller.
//
// Example:
//
//	port, _ := serial.Open(serial.DefaultConfig("/dev/ttyACM0"))
//	a, err := usbiss.New(ctx, port, usbiss.WithLogger(usbiss.GlogLogger{}))
func New(ctx context.Context, port io.ReadWriteCloser, opts ...Option) (*Adapter, error) {
	if port == nil {
		return nil, fmt.Errorf("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Adapter{
		port:   port,
		config: cfg,
	}
	if cfg.SkipHandshake {
		return a, nil
	}

	info, err := a.readInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("get info: %w", err)
	}
	a.info = *info

	serialNo, err := a.readSerial(ctx)
	if err != nil {
		return nil, fmt.Errorf("get serial number: %w", err)
	}
	a.serial = serialNo

	a.logInfo("adapter identified",
		"module_id", a.info.ID,
		"firmware", fmt.Sprintf("0x%02X", a.info.Firmware),
		"mode", fmt.Sprintf("0x%02X", a.info.Mode),
		"serial", a.serial,
	)

	return a, nil
}

// Open opens the serial device described by cfg and identifies the module.
// The port is closed again if identification fails.
func Open(ctx context.Context, cfg *serial.Config, opts ...Option) (*Adapter, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}

	a, err := New(ctx, port, opts...)
	if err != nil {
		port.Close()
		return nil, err
	}
	return a, nil
}

// Info returns the identity read at construction. Mode reflects the last
// successful Configure.
func (a *Adapter) Info() protocol.ModuleInfo {
	return a.info
}

// SerialNumber returns the module's 8-digit serial number.
func (a *Adapter) SerialNumber() string {
	return a.serial
}

// Mode returns the active operating mode, or nil before Configure.
func (a *Adapter) Mode() OperatingMode {
	return a.mode
}

// Refresh re-reads the module identity from the adapter.
func (a *Adapter) Refresh(ctx context.Context) (protocol.ModuleInfo, error) {
	info, err := a.readInfo(ctx)
	if err != nil {
		return a.info, err
	}
	a.info = *info
	return a.info, nil
}

// Configure selects the operating mode. The mode is validated before any
// I/O; the previous mode stays active if validation fails or the adapter
// rejects the request.
//
// Example:
//
//	err := a.Configure(ctx, usbiss.SPIMode{Mode: 1, Frequency: 25000})
func (a *Adapter) Configure(ctx context.Context, mode OperatingMode) error {
	if mode == nil {
		return configErr("mode", ErrMissingParameter)
	}

	payload, err := mode.modeBytes()
	if err != nil {
		return err
	}

	cmd, err := protocol.BuildModeSetCmd(payload)
	if err != nil {
		return err
	}

	resp, err := a.exchange(ctx, "set mode", cmd, protocol.ModeSetResponseSize)
	if err != nil {
		return fmt.Errorf("configure %s: %w", mode, err)
	}

	if err := protocol.ParseModeSetResponse(resp); err != nil {
		a.logError("mode rejected", "mode", mode.String(), "error", err)
		return &ConfigError{Field: "mode", Err: ErrDeviceRejected, Cause: err}
	}

	a.mode = mode
	a.info.Mode = payload[0]
	a.pins = 0
	if m, ok := mode.(IOMode); ok {
		a.pins = m.initialLevels()
	}

	a.logInfo("mode configured", "mode", mode.String(), "bytes", fmt.Sprintf("% X", payload))
	return nil
}

// Close releases the transport. It is safe to call more than once; only the
// first call closes the port.
func (a *Adapter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.logDebug("closing adapter")
	return a.port.Close()
}

func (a *Adapter) readInfo(ctx context.Context) (*protocol.ModuleInfo, error) {
	resp, err := a.exchange(ctx, "get info", protocol.BuildInfoCmd(), protocol.InfoResponseSize)
	if err != nil {
		return nil, err
	}
	return protocol.ParseInfoResponse(resp)
}

func (a *Adapter) readSerial(ctx context.Context) (string, error) {
	resp, err := a.exchange(ctx, "get serial number", protocol.BuildSerialCmd(), protocol.SerialResponseSize)
	if err != nil {
		return "", err
	}
	return protocol.ParseSerialResponse(resp)
}

// exchange writes cmd and reads up to n response bytes. A short response is
// returned without error; the caller's parser decides what it means.
func (a *Adapter) exchange(ctx context.Context, op string, cmd []byte, n int) ([]byte, error) {
	if a.closed {
		return nil, &TransportError{Op: op, Err: ErrClosed}
	}
	if a.err != nil {
		return nil, a.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Drop anything a timed-out read left behind so the reply lines up.
	if f, ok := a.port.(flusher); ok {
		if err := f.Flush(); err != nil {
			return nil, a.fail(op, fmt.Errorf("flush input: %w", err))
		}
	}

	a.logDebug("tx", "op", op, "frame", fmt.Sprintf("% X", cmd))

	if _, err := a.port.Write(cmd); err != nil {
		return nil, a.fail(op, fmt.Errorf("write command: %w", err))
	}

	if a.config.CommandDelay > 0 {
		time.Sleep(a.config.CommandDelay)
	}

	resp, err := a.readResponse(n)
	if err != nil {
		return nil, a.fail(op, fmt.Errorf("read response: %w", err))
	}

	a.logDebug("rx", "op", op, "bytes", fmt.Sprintf("% X", resp))
	if len(resp) < n {
		a.logDebug("short response", "op", op, "got", len(resp), "want", n)
	}

	return resp, nil
}

// readResponse reads until n bytes arrive or the transport times out.
func (a *Adapter) readResponse(n int) ([]byte, error) {
	buf := make([]byte, n)
	total := 0
	for total < n {
		m, err := a.port.Read(buf[total:])
		total += m
		if err != nil {
			if errors.Is(err, io.EOF) || os.IsTimeout(err) {
				break
			}
			return nil, err
		}
		if m == 0 {
			break
		}
	}
	return buf[:total], nil
}

// fail records a transport error; the adapter is unusable afterwards.
func (a *Adapter) fail(op string, err error) error {
	te := &TransportError{Op: op, Err: err}
	a.err = te
	a.logError("transport failure", "op", op, "error", err)
	return te
}

// logDebug logs a debug message if a logger is configured.
func (a *Adapter) logDebug(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (a *Adapter) logInfo(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (a *Adapter) logError(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Error(msg, keysAndValues...)
	}
}
