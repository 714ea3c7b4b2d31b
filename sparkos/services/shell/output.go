package shell

import (
	"fmt"
	"strconv"
)

// Write sends p to the transport, expanding "\n" to "\r\n" when CRLF is set.
func (s *Shell) Write(p []byte) error {
	if s.closed {
		return ErrClosed
	}
	if !s.cfg.CRLF {
		return s.writeRaw(p)
	}

	buf := s.wbuf[:0]
	for _, b := range p {
		if len(buf)+2 > cap(buf) {
			if err := s.writeRaw(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
		if b == '\n' && s.lastW != '\r' {
			buf = append(buf, '\r')
		}
		buf = append(buf, b)
		s.lastW = b
	}
	if len(buf) == 0 {
		return nil
	}
	return s.writeRaw(buf)
}

// WriteString is Write for a string.
func (s *Shell) WriteString(str string) error {
	for len(str) > 0 {
		n := copy(s.seq[:], str)
		if err := s.Write(s.seq[:n]); err != nil {
			return err
		}
		str = str[n:]
	}
	return nil
}

// Printf formats into the bounded printf buffer and writes the result. The
// formatted text is truncated to PrintfSize bytes; the returned count is the
// length of that text before "\n" becomes "\r\n", so it never exceeds
// PrintfSize. On a transport error it returns -1.
func (s *Shell) Printf(format string, args ...any) (int, error) {
	s.pbuf.reset()
	fmt.Fprintf(&s.pbuf, format, args...)
	out := s.pbuf.b
	if s.pbuf.truncated {
		s.log.Debugw("printf truncated", "limit", cap(s.pbuf.b))
	}
	if err := s.Write(out); err != nil {
		return -1, err
	}
	return len(out), nil
}

// writeRaw writes p without translation, retrying short writes.
func (s *Shell) writeRaw(p []byte) error {
	if s.closed {
		return ErrClosed
	}
	for len(p) > 0 {
		n, err := s.w.Write(p)
		if n > 0 {
			s.stats.bytesOut.Add(uint64(n))
			s.lastW = p[n-1]
			p = p[n:]
		}
		if err != nil {
			s.stats.writeErrors.Add(1)
			s.log.Warnw("transport write failed", "error", err)
			return fmt.Errorf("shell: write: %w", err)
		}
		if n == 0 {
			s.stats.writeErrors.Add(1)
			return fmt.Errorf("shell: write: no progress")
		}
	}
	return nil
}

func (s *Shell) writeStr(str string) {
	for len(str) > 0 {
		n := copy(s.seq[:], str)
		_ = s.writeRaw(s.seq[:n])
		str = str[n:]
	}
}

// cursorLeft moves the terminal cursor n columns left.
func (s *Shell) cursorLeft(n int) {
	if n <= 0 {
		return
	}
	b := append(s.seq[:0], 0x1b, '[')
	b = strconv.AppendInt(b, int64(n), 10)
	b = append(b, 'D')
	_ = s.writeRaw(b)
}

func (s *Shell) bell() {
	s.stats.bells.Add(1)
	_ = s.writeRaw([]byte{0x07})
}

// boundedBuffer is an io.Writer over a fixed-capacity slice that drops
// anything past its capacity.
type boundedBuffer struct {
	b         []byte
	truncated bool
}

func (w *boundedBuffer) reset() {
	w.b = w.b[:0]
	w.truncated = false
}

func (w *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := cap(w.b) - len(w.b); n > room {
		w.truncated = true
		p = p[:room]
	}
	w.b = append(w.b, p...)
	return n, nil
}
