package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// zerologLevel converts a string log level to zerolog.Level.
func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewZerolog builds the console-format logger used by the storage and
// metrics managers. Output goes to file, or stderr when file is nil.
func NewZerolog(file io.Writer, level, component string) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}
	if file != nil {
		out = zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	return zerolog.New(out).
		Level(zerologLevel(level)).
		With().Timestamp().Str("component", component).Logger()
}
