package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := build("info", "json", zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Debug("hidden")
	log.Sugar().Infow("command dispatched", "name", "led")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "command dispatched", entry["msg"])
	assert.Equal(t, "led", entry["name"])
	assert.Equal(t, "info", entry["level"])
}

func TestBuildConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := build("debug", "", zapcore.AddSync(&buf))
	require.NoError(t, err)
	log.Debug("line accepted")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "line accepted")
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", "console")
	assert.Error(t, err)
	_, err = New("info", "xml")
	assert.Error(t, err)

	log, err := New("warn", "console")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
