package shell

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExpandsNewlines(t *testing.T) {
	s, tr := newTestShell(t, testConfig())

	require.NoError(t, s.Write([]byte("a\nb\r\nc\n")))
	assert.Equal(t, "a\r\nb\r\nc\r\n", tr.w.String())
}

func TestWriteRawWhenCRLFDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CRLF = false
	s, tr := newTestShell(t, cfg)

	require.NoError(t, s.Write([]byte("a\nb")))
	assert.Equal(t, "a\nb", tr.w.String())
}

func TestWriteChunksLongOutput(t *testing.T) {
	s, tr := newTestShell(t, testConfig())
	long := strings.Repeat("0123456789\n", 40)

	require.NoError(t, s.Write([]byte(long)))
	assert.Equal(t, strings.ReplaceAll(long, "\n", "\r\n"), tr.w.String())
	assert.Equal(t, uint64(len(long)+40), s.Stats().BytesOut)
}

func TestWriteError(t *testing.T) {
	s, tr := newTestShell(t, testConfig())
	tr.w.err = errors.New("tx fault")

	err := s.Write([]byte("x"))
	assert.ErrorContains(t, err, "tx fault")
	assert.Equal(t, StatusError, StatusOf(err))
	assert.Equal(t, uint64(1), s.Stats().WriteErrors)
}

func TestPrintfTruncates(t *testing.T) {
	cfg := testConfig()
	cfg.PrintfSize = 16
	s, tr := newTestShell(t, cfg)

	n, err := s.Printf("%s-%d", strings.Repeat("x", 20), 42)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, strings.Repeat("x", 16), tr.w.String())

	tr.w.Reset()
	n, err = s.Printf("pin %d\n", 3)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "pin 3\r\n", tr.w.String())
}

func TestPrintfCountsFormattedBytes(t *testing.T) {
	s, tr := newTestShell(t, testConfig())

	n, err := s.Printf("a\nb\n")
	require.NoError(t, err)
	assert.Equal(t, 4, n, "line endings expand after counting")
	assert.Equal(t, "a\r\nb\r\n", tr.w.String())
	assert.Equal(t, uint64(6), s.Stats().BytesOut)
}

func TestPrintfWriteError(t *testing.T) {
	s, tr := newTestShell(t, testConfig())
	tr.w.err = errors.New("tx fault")

	n, err := s.Printf("hello")
	assert.Equal(t, -1, n)
	assert.Error(t, err)
}

func TestWriteString(t *testing.T) {
	s, tr := newTestShell(t, testConfig())
	require.NoError(t, s.WriteString("a long string that spans the scratch\n"))
	assert.Equal(t, "a long string that spans the scratch\r\n", tr.w.String())
}
