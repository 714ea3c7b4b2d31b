package shell

type escAction uint8

const (
	escNone escAction = iota
	escUp
	escDown
	escRight
	escLeft
	escDelete
	escHome
	escEnd
)

// maxEscape bounds a buffered escape sequence. Longer sequences are dropped.
const maxEscape = 8

// parseEscape decodes a VT100 sequence starting with ESC. ok is false while
// the sequence is still incomplete; unrecognised complete sequences decode to
// escNone so they are consumed without effect.
func parseEscape(b []byte) (consumed int, action escAction, ok bool) {
	if len(b) == 0 || b[0] != 0x1b {
		return 0, escNone, true
	}
	if len(b) < 2 {
		return 0, escNone, false
	}
	switch b[1] {
	case '[':
	case 'O':
		// SS3: keypad application mode.
		if len(b) < 3 {
			return 0, escNone, false
		}
		return 3, finalAction(b[2]), true
	default:
		return 2, escNone, true
	}

	if len(b) < 3 {
		return 0, escNone, false
	}
	switch b[2] {
	case 'A', 'B', 'C', 'D', 'H', 'F':
		return 3, finalAction(b[2]), true
	case '1', '7':
		return tildeKey(b, escHome)
	case '4', '8':
		return tildeKey(b, escEnd)
	case '3':
		return tildeKey(b, escDelete)
	default:
		return consumeCSI(b)
	}
}

func finalAction(b byte) escAction {
	switch b {
	case 'A':
		return escUp
	case 'B':
		return escDown
	case 'C':
		return escRight
	case 'D':
		return escLeft
	case 'H':
		return escHome
	case 'F':
		return escEnd
	default:
		return escNone
	}
}

// tildeKey handles CSI n ~.
func tildeKey(b []byte, act escAction) (int, escAction, bool) {
	if len(b) < 4 {
		return 0, escNone, false
	}
	if b[3] == '~' {
		return 4, act, true
	}
	return consumeCSI(b)
}

// consumeCSI skips parameter and intermediate bytes up to the final byte.
func consumeCSI(b []byte) (int, escAction, bool) {
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			return i + 1, escNone, true
		}
	}
	return 0, escNone, false
}
