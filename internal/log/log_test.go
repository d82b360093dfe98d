package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestKeyValueOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	defer SetLevel(LevelInfo)

	Info("expanded series", "series", "ia-maths", "count", 16, "dangling")
	Debug("hidden at info level", "k", "v")
	Error("export failed", errors.New("disk full"), "path", "/tmp/out.ics")

	out := buf.String()
	assert.Contains(t, out, "expanded series")
	assert.Contains(t, out, "series=ia-maths")
	assert.Contains(t, out, "count=16")
	assert.NotContains(t, out, "dangling")
	assert.NotContains(t, out, "hidden at info level")
	assert.Contains(t, out, `error="disk full"`)
	assert.Contains(t, out, "path=/tmp/out.ics")

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("now visible", "k", "v")
	assert.Contains(t, buf.String(), "now visible")
}
