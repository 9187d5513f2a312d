// Package log provides a leveled, structured logger shared by the whole
// module. It wraps zerolog behind package-level functions so callers do
// not carry a logger handle around.
package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	// sane default so packages can log before Init is called
	logger = zerolog.New(consoleWriter(os.Stderr)).Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// Init configures the package logger with the given level ("debug",
// "info", "warn", "error") and output writer. If w is nil, stderr is
// used.
func Init(level string, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger = zerolog.New(consoleWriter(w)).Level(lvl).
		With().Timestamp().Logger()
	return nil
}

func Debugf(format string, args ...any) { logger.Debug().Msgf(format, args...) }
func Infof(format string, args ...any)  { logger.Info().Msgf(format, args...) }
func Warnf(format string, args ...any)  { logger.Warn().Msgf(format, args...) }
func Errorf(format string, args ...any) { logger.Error().Msgf(format, args...) }

// Error logs an error value at error level.
func Error(err error) { logger.Error().Err(err).Send() }

// Debugw logs a message with alternating key/value pairs.
func Debugw(msg string, keysAndValues ...any) { logw(logger.Debug(), msg, keysAndValues) }
func Infow(msg string, keysAndValues ...any)  { logw(logger.Info(), msg, keysAndValues) }
func Warnw(msg string, keysAndValues ...any)  { logw(logger.Warn(), msg, keysAndValues) }
func Errorw(msg string, keysAndValues ...any) { logw(logger.Error(), msg, keysAndValues) }

func logw(ev *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	ev.Msg(msg)
}
