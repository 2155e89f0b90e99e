package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		warnSeen  bool
	}{
		{level: "debug", debugSeen: true, warnSeen: true},
		{level: "info", warnSeen: true},
		{level: "warn", warnSeen: true},
		{level: "error"},
		{level: "bogus", warnSeen: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)
			logger.Debug("debug message")
			logger.Warn("warn message")

			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug message")))
			assert.Equal(t, tt.warnSeen, bytes.Contains(buf.Bytes(), []byte("warn message")))
		})
	}
}
