package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendLogLineTruncates(t *testing.T) {
	p := AppendLogLine(nil, LogInfo, []byte("hello world"), 6)
	assert.Equal(t, []byte("Ihello"), p)

	level, text, ok := ParseLogLine(p)
	assert.True(t, ok)
	assert.Equal(t, LogInfo, level)
	assert.Equal(t, "hello", string(text))
}

func TestParseLogLineEmpty(t *testing.T) {
	_, _, ok := ParseLogLine(nil)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "log_line", MsgLogLine.String())
	assert.Equal(t, "rx_ready", MsgRxReady.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
