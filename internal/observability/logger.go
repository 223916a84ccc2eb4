package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes one JSON object per event: an event name plus flat fields.
type Logger struct {
	base zerolog.Logger
}

func NewLogger(level string) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	return &Logger{base: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()}
}

func NewNopLogger() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// ParseLevel falls back to info for empty or unknown values.
func ParseLevel(value string) zerolog.Level {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func (l *Logger) Info(message string, fields map[string]any) {
	l.base.Info().Fields(fields).Msg(message)
}

func (l *Logger) Warn(message string, fields map[string]any) {
	l.base.Warn().Fields(fields).Msg(message)
}

func (l *Logger) Error(message string, fields map[string]any) {
	l.base.Error().Fields(fields).Msg(message)
}

// With returns a child logger that always carries fields.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{base: l.base.With().Fields(fields).Logger()}
}
