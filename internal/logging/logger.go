// =============================================================================
// EDI Claims Converter - Logging
// =============================================================================
//
// The converter modules log through the small Logger interface below. It is
// backed by zerolog: console output for interactive use, JSON lines for
// everything else.
//
// LEVELS:
//   debug, info, warn, error (default: info)
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the logging interface used across the converter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Output formats accepted by Init.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Init configures the global zerolog logger.
//
// PARAMETERS:
//   - level:  debug, info, warn or error. Unknown values fall back to info.
//   - format: "text" for a human-readable console writer, anything else for JSON.
//   - out:    destination; os.Stderr when nil.
func Init(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))

	if strings.EqualFold(format, FormatText) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// New returns a Logger that tags every line with the component name.
func New(component string) Logger {
	l := log.With().Str("component", component).Logger()
	return &zeroLogger{logger: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zeroLogger{logger: zerolog.Nop()}
}

// zeroLogger adapts zerolog to the printf-style Logger interface.
type zeroLogger struct {
	logger zerolog.Logger
}

func (l *zeroLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug().Msg(format(msg, args))
}

func (l *zeroLogger) Info(msg string, args ...interface{}) {
	l.logger.Info().Msg(format(msg, args))
}

func (l *zeroLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warn().Msg(format(msg, args))
}

func (l *zeroLogger) Error(msg string, args ...interface{}) {
	l.logger.Error().Msg(format(msg, args))
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
