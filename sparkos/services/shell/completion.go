package shell

// complete extends the command name under the cursor. Only the first token
// completes, and only with the cursor at its end.
func (s *Shell) complete() {
	start := 0
	for start < len(s.line) && s.line[start] == ' ' {
		start++
	}
	if s.cursor < start {
		s.bell()
		return
	}
	for i := start; i < s.cursor; i++ {
		if s.line[i] == ' ' {
			s.bell()
			return
		}
	}
	if s.cursor < len(s.line) && s.line[s.cursor] != ' ' {
		s.bell()
		return
	}

	prefix := s.line[start:s.cursor]
	var first *Command
	common, matches := 0, 0
	for c := s.reg.head; c != nil; c = c.next {
		if !hasPrefix(c.Name, prefix) {
			continue
		}
		matches++
		if first == nil {
			first = c
			common = len(c.Name)
			continue
		}
		common = commonPrefixLen(first.Name[:common], c.Name)
	}
	if matches == 0 {
		s.bell()
		return
	}

	ext := first.Name[len(prefix):common]
	space := ""
	if matches == 1 && s.cursor == len(s.line) {
		space = " "
	}
	if len(s.line)+len(ext)+len(space) > s.lineMax() {
		s.bell()
		return
	}
	s.insertString(ext)
	s.insertString(space)
	if matches == 1 {
		s.redrawLine()
		return
	}
	s.listCandidates(prefix)
}

// listCandidates prints every command matching the completed prefix on the
// lines below the input, then repaints the line.
func (s *Shell) listCandidates(prefix []byte) {
	width := 0
	for c := s.reg.head; c != nil; c = c.next {
		if hasPrefix(c.Name, prefix) && len(c.Name) > width {
			width = len(c.Name)
		}
	}
	width += 2
	perRow := 80 / width
	if perRow < 1 {
		perRow = 1
	}

	s.writeStr("\r\n")
	col := 0
	for c := s.reg.head; c != nil; c = c.next {
		if !hasPrefix(c.Name, prefix) {
			continue
		}
		if col == perRow {
			s.writeStr("\r\n")
			col = 0
		}
		s.writeStr(c.Name)
		for pad := len(c.Name); pad < width; pad++ {
			s.writeStr(" ")
		}
		col++
	}
	s.writeStr("\r\n")
	s.redrawLine()
}

func hasPrefix(name string, prefix []byte) bool {
	if len(prefix) > len(name) {
		return false
	}
	return name[:len(prefix)] == string(prefix)
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
