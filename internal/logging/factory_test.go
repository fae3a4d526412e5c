package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	for _, kind := range []string{"", "slog", "zerolog"} {
		t.Run("kind="+kind, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(kind, &buf, "warn")
			require.NoError(t, err)

			log.Info(context.Background(), "quiet")
			log.With("module", "test").Error(context.Background(), "loud", "k", "v")

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, "test", lines[0]["module"])
			assert.Equal(t, "v", lines[0]["k"])
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("printf", &bytes.Buffer{}, "info")
	assert.ErrorIs(t, err, ErrUnknownLogger)

	_, err = New("slog", &bytes.Buffer{}, "loud")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(WithRequestID(context.Background(), "abc")))
}
