// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and output format and returns the configured
// logger. Diagnostics go to stderr so they never mix with probe output.
func Init(level, format string) zerolog.Logger {
	return initTo(os.Stderr, level, format)
}

func initTo(w io.Writer, level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	if strings.ToLower(format) == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		// default console
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return log.Logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.WarnLevel
}
