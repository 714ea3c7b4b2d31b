package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletionShell(t *testing.T, cfg Config, names ...string) (*Shell, *fakeTransport) {
	t.Helper()
	s, tr := newTestShell(t, cfg)
	rec := &recorder{}
	for _, n := range names {
		require.NoError(t, s.RegisterCommand(rec.command(n, AnyArgs)))
	}
	tr.w.Reset()
	return s, tr
}

func TestCompleteUniqueMatch(t *testing.T) {
	s, _ := newCompletionShell(t, testConfig(), "led", "gpio")
	feed(s, "gp\t")
	assert.Equal(t, "gpio ", string(s.line))
	assert.Equal(t, len(s.line), s.cursor)
}

func TestCompleteCommonPrefix(t *testing.T) {
	s, tr := newCompletionShell(t, testConfig(), "gpio-read", "gpio-write", "led")
	feed(s, "g\t")
	assert.Equal(t, "gpio-", string(s.line), "extends only to the common prefix")

	out := tr.w.String()
	assert.Contains(t, out, "gpio-read")
	assert.Contains(t, out, "gpio-write")
	assert.NotContains(t, out, "led")
	assert.True(t, strings.HasSuffix(out, "> gpio-"), "line redrawn after candidates: %q", out)
}

func TestCompleteNoMatchRings(t *testing.T) {
	s, _ := newCompletionShell(t, testConfig(), "led")
	feed(s, "zz\t")
	assert.Equal(t, "zz", string(s.line))
	assert.Equal(t, uint64(1), s.Stats().Bells)
}

func TestCompleteOnlyFirstToken(t *testing.T) {
	s, _ := newCompletionShell(t, testConfig(), "led")
	feed(s, "led l\t")
	assert.Equal(t, "led l", string(s.line))
	assert.Equal(t, uint64(1), s.Stats().Bells)

	feed(s, "\x01\x1b[C\t")
	assert.Equal(t, "led l", string(s.line), "cursor inside the first token")
}

func TestCompleteBeforeArguments(t *testing.T) {
	s, _ := newCompletionShell(t, testConfig(), "led")
	feed(s, "le on"+left+left+left+"\t")
	assert.Equal(t, "led on", string(s.line), "no extra space before an existing separator")
	assert.Equal(t, 3, s.cursor)
}

func TestCompleteWithoutRoom(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 6
	s, _ := newCompletionShell(t, cfg, "version")
	feed(s, "ver\t")
	assert.Equal(t, "ver", string(s.line))
	assert.Equal(t, uint64(1), s.Stats().Bells)
}

func TestCompleteDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.AutoComplete = false
	s, _ := newCompletionShell(t, cfg, "led")
	feed(s, "le\t")
	assert.Equal(t, "le", string(s.line))
	assert.Equal(t, uint64(0), s.Stats().Bells)
}
