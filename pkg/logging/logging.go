// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted by ConfigureGlobalLogging.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var logWriter io.Writer = os.Stderr

// stdLogWriter forwards stdlib log output to zerolog at debug level.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	w.logger.Debug().Str("source", "stdlog").Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
}

// ConfigureGlobalLogging sets the global level and output format. Unknown levels fall
// back to error; unknown formats fall back to console.
func ConfigureGlobalLogging(levelStr, format string) {
	level := ParseLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	var w io.Writer = logWriter
	if !strings.EqualFold(format, FormatJSON) {
		w = zerolog.ConsoleWriter{Out: logWriter, TimeFormat: time.RFC3339}
	}

	logContext := zerolog.New(w).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: log.Logger})
}

// ParseLevel converts a level name to a zerolog.Level. An empty or invalid name yields
// zerolog.ErrorLevel.
func ParseLevel(levelStr string) zerolog.Level {
	if levelStr == "" {
		return zerolog.ErrorLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", levelStr).Msg("Invalid log level, defaulting to error")
		return zerolog.ErrorLevel
	}
	return level
}

// SetLogWriter changes the destination used by the next ConfigureGlobalLogging call.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Component returns the global logger tagged with a component field.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
