//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// StdioSerial is the process console as a Serial device.
type StdioSerial struct {
	mu    sync.Mutex
	in    *os.File
	out   *os.File
	state *term.State
}

func newStdioSerial() *StdioSerial {
	return &StdioSerial{in: os.Stdin, out: os.Stdout}
}

// OpenStdio returns the process console. When raw is set and stdin is a
// terminal it is switched to raw mode until Close, so the shell sees every
// keystroke and does its own echo.
func OpenStdio(raw bool) (*StdioSerial, error) {
	s := newStdioSerial()
	if !raw {
		return s, nil
	}
	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return s, nil
	}
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("hal: stdio raw mode: %w", err)
	}
	s.state = st
	return s, nil
}

// Raw reports whether the terminal was switched to raw mode.
func (s *StdioSerial) Raw() bool { return s.state != nil }

func (s *StdioSerial) Read(p []byte) (int, error) {
	if s.in == nil {
		return 0, ErrNotImplemented
	}
	return s.in.Read(p)
}

func (s *StdioSerial) Write(p []byte) (int, error) {
	if s.out == nil {
		return 0, ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

// Close restores the terminal state. The underlying files stay open.
func (s *StdioSerial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	st := s.state
	s.state = nil
	if err := term.Restore(int(s.in.Fd()), st); err != nil {
		return fmt.Errorf("hal: stdio restore: %w", err)
	}
	return nil
}
