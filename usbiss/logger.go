package usbiss

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/golang/glog"
)

// Logger is an optional logging interface that can be provided to the adapter.
// This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// GlogLogger writes adapter logs through glog. Debug messages are emitted at
// verbosity DebugLevel, which defaults to 2 (-v=2).
type GlogLogger struct {
	DebugLevel glog.Level
}

// Debug logs at verbosity DebugLevel.
func (l GlogLogger) Debug(msg string, kv ...interface{}) {
	level := l.DebugLevel
	if level == 0 {
		level = 2
	}
	if glog.V(level) {
		glog.Info(formatKV(msg, kv))
	}
}

// Info logs at info severity.
func (l GlogLogger) Info(msg string, kv ...interface{}) {
	glog.Info(formatKV(msg, kv))
}

// Error logs at error severity.
func (l GlogLogger) Error(msg string, kv ...interface{}) {
	glog.Error(formatKV(msg, kv))
}

// WriterLogger writes one line per message to an io.Writer, such as a
// rotating log file. Debug messages are dropped unless Verbose is set.
type WriterLogger struct {
	Verbose bool

	log *log.Logger
}

// NewWriterLogger returns a WriterLogger with timestamped lines.
func NewWriterLogger(w io.Writer, verbose bool) *WriterLogger {
	return &WriterLogger{
		Verbose: verbose,
		log:     log.New(w, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// Debug writes a DEBUG line when Verbose is set.
func (l *WriterLogger) Debug(msg string, kv ...interface{}) {
	if l.Verbose {
		l.log.Print("DEBUG " + formatKV(msg, kv))
	}
}

// Info writes an INFO line.
func (l *WriterLogger) Info(msg string, kv ...interface{}) {
	l.log.Print("INFO " + formatKV(msg, kv))
}

// Error writes an ERROR line.
func (l *WriterLogger) Error(msg string, kv ...interface{}) {
	l.log.Print("ERROR " + formatKV(msg, kv))
}

// formatKV renders msg followed by key=value pairs.
func formatKV(msg string, kv []interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v=?", kv[i])
		}
	}
	return b.String()
}
