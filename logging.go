package osmfusion

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates human-readable logger. Verbose mode enables debug messages
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates logger writing JSON lines
func NewJSONLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}
