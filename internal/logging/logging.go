// Package logging wires zerolog for the whole process: the engine, the HTTP layer and GORM
// all write through the same logger so a scoring session can be followed in one stream.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request id.
	RequestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output io.Writer
}

// Init replaces the process logger.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05.000",
			FormatLevel: func(i interface{}) string {
				s, _ := i.(string)
				return strings.ToUpper(s)
			},
		}
	}
	base = zerolog.New(out).With().Timestamp().Logger()
}

// Logger returns the process logger.
func Logger() *zerolog.Logger {
	return &base
}

// WithRequestID returns a context that carries a logger tagged with the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := base.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	return context.WithValue(ctx, loggerKey, &l)
}

// FromContext extracts the request logger, falling back to the process logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &base
	}
	if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &base
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
