package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownLogger = errors.New("unknown logger")
	ErrUnknownLevel  = errors.New("unknown log level")
)

const requestIDKey = "request_id"

type requestIDCtxKey struct{}

// WithRequestID returns a copy of ctx carrying id. Both loggers attach it to
// every record logged with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to a slog
// level. An empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l >= slog.LevelError:
		return zerolog.ErrorLevel
	case l >= slog.LevelWarn:
		return zerolog.WarnLevel
	case l >= slog.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// New builds the logger named by kind ("slog", the default, or "zerolog")
// writing JSON lines to w at or above level.
func New(kind string, w io.Writer, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "", "slog":
		return NewSlogJSON(w, lvl), nil
	case "zerolog":
		zl := zerolog.New(w).Level(zerologLevel(lvl)).With().Timestamp().Logger()
		return NewZerologLogger(zl), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogger, kind)
	}
}
