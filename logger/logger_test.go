package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"error":   ERROR,
		"fatal":   FATAL,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestWithFieldsSortsKeysAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, INFO)
	defer SetOutput(&bytes.Buffer{}, INFO)

	WithFields(map[string]interface{}{"b": 2, "a": 1}).Info("license checked")
	WithFields(map[string]interface{}{"c": 3}).Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "[INFO] license checked | a=1, b=2")
	assert.False(t, strings.Contains(out, "hidden"))
}
