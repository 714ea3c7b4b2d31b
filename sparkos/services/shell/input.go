package shell

const (
	keyCtrlA     = 0x01
	keyCtrlC     = 0x03
	keyCtrlE     = 0x05
	keyBackspace = 0x08
	keyTab       = 0x09
	keyLF        = 0x0a
	keyCR        = 0x0d
	keyCtrlU     = 0x15
	keyCtrlW     = 0x17
	keyEsc       = 0x1b
	keyDel       = 0x7f
)

// handleByte feeds one input byte through the editor state machine.
func (s *Shell) handleByte(b byte) {
	s.stats.bytesIn.Add(1)

	if s.escLen > 0 {
		s.esc[s.escLen] = b
		s.escLen++
		_, act, ok := parseEscape(s.esc[:s.escLen])
		if !ok {
			if s.escLen == len(s.esc) {
				s.escLen = 0
			}
			return
		}
		s.escLen = 0
		s.applyEscape(act)
		return
	}

	afterCR := s.afterCR
	s.afterCR = false

	switch b {
	case keyCR:
		s.afterCR = true
		s.accept()
	case keyLF:
		if !afterCR {
			s.accept()
		}
	case keyBackspace, keyDel:
		s.backspace()
	case keyTab:
		if s.cfg.AutoComplete {
			s.complete()
		}
	case keyEsc:
		s.esc[0] = b
		s.escLen = 1
	case keyCtrlA:
		s.home()
	case keyCtrlE:
		s.end()
	case keyCtrlC:
		s.cancelLine()
	case keyCtrlU:
		s.killLeft()
	case keyCtrlW:
		s.deletePrevWord()
	default:
		if b >= 0x20 && b < 0x7f {
			s.insertByte(b)
		}
	}
}

func (s *Shell) applyEscape(act escAction) {
	switch act {
	case escUp:
		s.recallOlder()
	case escDown:
		s.recallNewer()
	case escLeft:
		s.moveLeft()
	case escRight:
		s.moveRight()
	case escHome:
		s.home()
	case escEnd:
		s.end()
	case escDelete:
		s.deleteForward()
	}
}

func (s *Shell) recallOlder() {
	entry, ok := s.hist.Older()
	if !ok {
		s.bell()
		return
	}
	s.replaceLine(entry)
}

func (s *Shell) recallNewer() {
	entry, ok := s.hist.Newer()
	if !ok {
		s.bell()
		return
	}
	s.replaceLine(entry)
}

// accept ends the current line, dispatches it and re-prompts.
func (s *Shell) accept() {
	s.writeStr("\r\n")
	s.stats.lines.Add(1)

	line := trimSpace(s.line)
	s.log.Debugw("line accepted", "len", len(line))
	s.dispatch(line)
	s.hist.Push(line)

	s.resetLine()
	if !s.exited.Load() {
		s.prompt()
	}
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
