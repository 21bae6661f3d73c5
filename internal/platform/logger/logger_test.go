package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		entrada  string
		esperado slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verboso", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.entrada, func(t *testing.T) {
			assert.Equal(t, tt.esperado, ParseLevel(tt.entrada))
		})
	}
}
