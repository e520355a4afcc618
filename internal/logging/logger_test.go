package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvPrefix, "fw ")
	t.Setenv(EnvToFile, "")

	s := FromEnv()
	assert.Equal(t, Settings{Level: log.DebugLevel, Prefix: "fw "}, s)
	assert.True(t, IsDebug())
}

func TestNewLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf, Settings{Level: log.WarnLevel, Prefix: "basefind "})

	lg.Info("hidden")
	lg.Warn("shown", "strings", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "basefind")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "strings=3")
	assert.NoError(t, lg.Close())
}
