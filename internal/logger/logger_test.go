package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestInitializeWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "goodaideas.log")

	l := Initialize("debug", file)
	require.NotNil(t, l)
	assert.Same(t, l, Log)

	Log.Info("hello", WithUserID("u1"), WithTable("profiles"))
	_ = Close()

	assert.FileExists(t, file)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := New("info", "")
	assert.Same(t, l, OrNop(l))
}
