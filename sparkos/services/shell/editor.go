package shell

// lineMax is the longest line the buffer can hold.
func (s *Shell) lineMax() int { return cap(s.line) }

func (s *Shell) moveLeft() {
	if s.cursor <= 0 {
		return
	}
	s.writeStr("\x1b[D")
	s.cursor--
}

func (s *Shell) moveRight() {
	if s.cursor >= len(s.line) {
		return
	}
	s.writeStr("\x1b[C")
	s.cursor++
}

func (s *Shell) home() {
	s.cursorLeft(s.cursor)
	s.cursor = 0
}

func (s *Shell) end() {
	if s.cursor >= len(s.line) {
		return
	}
	_ = s.writeRaw(s.line[s.cursor:])
	s.cursor = len(s.line)
}

func (s *Shell) insertByte(b byte) {
	if len(s.line) >= s.lineMax() {
		s.bell()
		return
	}
	if s.cursor == len(s.line) {
		s.line = append(s.line, b)
		s.cursor++
		_ = s.writeRaw(s.line[s.cursor-1 : s.cursor])
		return
	}
	s.line = s.line[:len(s.line)+1]
	copy(s.line[s.cursor+1:], s.line[s.cursor:])
	s.line[s.cursor] = b
	_ = s.writeRaw(s.line[s.cursor : s.cursor+1])
	s.cursor++
	s.redrawFromCursor()
}

// insertString inserts p at the cursor if it fits, without echo.
func (s *Shell) insertString(p string) bool {
	if len(s.line)+len(p) > s.lineMax() {
		return false
	}
	n := len(s.line)
	s.line = s.line[:n+len(p)]
	copy(s.line[s.cursor+len(p):], s.line[s.cursor:n])
	copy(s.line[s.cursor:], p)
	s.cursor += len(p)
	return true
}

func (s *Shell) deleteForward() {
	if s.cursor >= len(s.line) {
		return
	}
	s.line = append(s.line[:s.cursor], s.line[s.cursor+1:]...)
	s.redrawFromCursor()
}

func (s *Shell) backspace() {
	if s.cursor == 0 {
		return
	}
	if s.cursor == len(s.line) {
		s.line = s.line[:len(s.line)-1]
		s.cursor--
		s.writeStr("\b \b")
		return
	}
	s.cursor--
	s.line = append(s.line[:s.cursor], s.line[s.cursor+1:]...)
	s.writeStr("\x1b[D")
	s.redrawFromCursor()
}

// redrawFromCursor repaints the tail after an edit and returns the cursor.
func (s *Shell) redrawFromCursor() {
	tail := s.line[s.cursor:]
	_ = s.writeRaw(tail)
	s.writeStr("\x1b[K")
	s.cursorLeft(len(tail))
}

// redrawLine repaints prompt and line and restores the cursor column.
func (s *Shell) redrawLine() {
	s.writeStr("\r\x1b[K")
	s.writeStr(s.cfg.Prompt)
	_ = s.writeRaw(s.line)
	s.cursorLeft(len(s.line) - s.cursor)
}

// replaceLine swaps the buffer for p and parks the cursor at the end.
func (s *Shell) replaceLine(p []byte) {
	if len(p) > s.lineMax() {
		p = p[:s.lineMax()]
	}
	s.line = append(s.line[:0], p...)
	s.cursor = len(s.line)
	s.redrawLine()
}

func (s *Shell) killLeft() {
	if s.cursor <= 0 {
		return
	}
	n := copy(s.line, s.line[s.cursor:])
	s.line = s.line[:n]
	s.cursor = 0
	s.redrawLine()
}

func (s *Shell) deletePrevWord() {
	if s.cursor <= 0 {
		return
	}
	i := s.cursor
	for i > 0 && s.line[i-1] == ' ' {
		i--
	}
	for i > 0 && s.line[i-1] != ' ' {
		i--
	}
	s.line = append(s.line[:i], s.line[s.cursor:]...)
	s.cursor = i
	s.redrawLine()
}

func (s *Shell) cancelLine() {
	s.writeStr("^C\r\n")
	s.resetLine()
	s.prompt()
}

func (s *Shell) resetLine() {
	s.line = s.line[:0]
	s.cursor = 0
	s.escLen = 0
	s.hist.ResetCursor()
}

func (s *Shell) prompt() {
	s.writeStr(s.cfg.Prompt)
}
