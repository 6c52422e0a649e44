// Package logger builds the zerolog loggers used by the service and by the
// pgx query tracer.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// New returns the application logger. Local runs get a console writer,
// everything else emits JSON lines.
func New(env, level string) zerolog.Logger {
	return newWithWriter(os.Stdout, env, level)
}

func newWithWriter(w io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == "local" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "invoicedash").
		Str("environment", env).
		Logger()
}

// NewPgxLogger returns the logger handed to the pgx tracer
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("component", "pgx").
		Logger()
}

// PgxTraceLogLevel maps a zerolog level onto the pgx tracelog scale
func PgxTraceLogLevel(level zerolog.Level) tracelog.LogLevel {
	switch level {
	case zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelNone
	}
}
