// Package logger wraps zerolog for onepass.
//
// The CLI writes human-readable lines to stderr; stdout is reserved for
// command output. Secrets (passwords, record contents, keys) are never
// passed to the logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// NewLogger constructs a JSON logger for the given role label writing to w
func NewLogger(role string, w io.Writer, level zerolog.Level) *Logger {
	logger := zerolog.New(w).Level(level).With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{logger}
}

// NewConsoleLogger constructs a logger writing readable lines to stderr
func NewConsoleLogger(role string, level zerolog.Level) *Logger {
	w := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
	}
	return NewLogger(role, w, level)
}

// ParseLevel maps a level name to a zerolog level; empty means warn
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(name)
}

// Nop returns a *Logger that discards all log output
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the receiver
// with an extra component field.
func (l *Logger) GetChildLogger(component string) *Logger {
	return &Logger{l.With().Str("component", component).Logger()}
}
