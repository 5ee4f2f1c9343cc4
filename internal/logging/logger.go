// Package logging defines the structured logger used across browserctl and
// a zerolog-backed console implementation for the CLI.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured logging with key-value pairs.
// Components accept this interface so callers can plug in their own implementation.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return &noopLogger{}
}

// OrNoop returns l, or the no-op logger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return Noop()
	}
	return l
}

// zerologLogger adapts a zerolog.Logger to Logger.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewConsole creates a human-readable console logger writing to w.
func NewConsole(w io.Writer, level zerolog.Level, component string) Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return FromZerolog(zerolog.New(output).Level(level).With().Timestamp().Str("component", component).Logger())
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	withFields(l.zl.Debug(), keysAndValues).Msg(msg)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(l.zl.Info(), keysAndValues).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	withFields(l.zl.Warn(), keysAndValues).Msg(msg)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	withFields(l.zl.Error(), keysAndValues).Msg(msg)
}

// withFields attaches alternating key/value pairs to an event.
// A trailing key without a value is logged under "!BADKEY", matching log/slog.
func withFields(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			ev = ev.Interface("!BADKEY", keysAndValues[i])
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	return ev
}
