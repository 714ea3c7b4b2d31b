package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyEntries(h *History) []string {
	out := make([]string, 0, h.Len())
	for i := 0; i < h.Len(); i++ {
		out = append(out, string(h.At(i)))
	}
	return out
}

func TestHistoryRingEvictsOldest(t *testing.T) {
	h := NewHistory(3, 16)
	for _, l := range []string{"a", "b", "c", "d"} {
		require.True(t, h.Push([]byte(l)))
	}
	assert.Equal(t, []string{"d", "c", "b"}, historyEntries(h))
}

func TestHistorySkipsEmptyAndRepeats(t *testing.T) {
	h := NewHistory(3, 16)
	assert.False(t, h.Push(nil))
	assert.True(t, h.Push([]byte("ls")))
	assert.False(t, h.Push([]byte("ls")))
	assert.True(t, h.Push([]byte("led on 1")))
	assert.True(t, h.Push([]byte("ls")), "only the newest entry is compared")
	assert.Equal(t, []string{"ls", "led on 1", "ls"}, historyEntries(h))
}

func TestHistoryTruncatesToWidth(t *testing.T) {
	h := NewHistory(2, 4)
	h.Push([]byte("abcdef"))
	assert.Equal(t, "abcd", string(h.At(0)))
}

func TestHistoryRecallClamps(t *testing.T) {
	h := NewHistory(3, 16)
	_, ok := h.Older()
	assert.False(t, ok, "empty ring")

	h.Push([]byte("one"))
	h.Push([]byte("two"))

	e, ok := h.Older()
	require.True(t, ok)
	assert.Equal(t, "two", string(e))
	e, ok = h.Older()
	require.True(t, ok)
	assert.Equal(t, "one", string(e))
	_, ok = h.Older()
	assert.False(t, ok, "clamped at oldest")

	e, ok = h.Newer()
	require.True(t, ok)
	assert.Equal(t, "two", string(e))
	_, ok = h.Newer()
	assert.False(t, ok, "clamped at newest")

	h.ResetCursor()
	e, _ = h.Older()
	assert.Equal(t, "two", string(e))
}

func TestHistoryZeroDepth(t *testing.T) {
	h := NewHistory(0, 16)
	assert.False(t, h.Push([]byte("x")))
	assert.Equal(t, 0, h.Len())
	_, ok := h.Older()
	assert.False(t, ok)
}

func TestShellHistoryRecall(t *testing.T) {
	s, tr := newTestShell(t, testConfig())
	feed(s, "first\r")
	feed(s, "second\r")

	feed(s, "draft"+up)
	assert.Equal(t, "second", string(s.line), "recall replaces the in-progress line")
	assert.Equal(t, len("second"), s.cursor)

	feed(s, up)
	assert.Equal(t, "first", string(s.line))

	bells := s.Stats().Bells
	feed(s, up)
	assert.Equal(t, "first", string(s.line))
	assert.Equal(t, bells+1, s.Stats().Bells, "bell at the oldest entry")

	feed(s, down)
	assert.Equal(t, "second", string(s.line))
	feed(s, down)
	assert.Equal(t, "second", string(s.line), "down at the newest entry is a no-op")

	tr.w.Reset()
	feed(s, up)
	assert.Contains(t, tr.w.String(), "\r\x1b[K> first", "full-line redraw")
}

func TestShellHistoryCursorResetsAfterAccept(t *testing.T) {
	s, _ := newTestShell(t, testConfig())
	feed(s, "a\r")
	feed(s, "b\r")
	feed(s, up+up+"\r")

	feed(s, up)
	assert.Equal(t, "a", string(s.line), "the re-run line is the newest entry")
	feed(s, up)
	assert.Equal(t, "b", string(s.line))
}
