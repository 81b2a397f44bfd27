package internal

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zerolog.Level
	}{
		{"json debug", "debug", "json", zerolog.DebugLevel},
		{"upper case level", "WARN", "json", zerolog.WarnLevel},
		{"empty level", "", "json", zerolog.InfoLevel},
		{"unknown level", "loud", "console", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level, tt.format)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())

			logger.WithLevel(tt.wantLevel).Msg("hello")
			assert.Contains(t, buf.String(), "hello")
			if tt.format == "json" {
				assert.Contains(t, buf.String(), `"app":"fsnap"`)
			}
		})
	}
}
