package term

import "sparkshell/hal"

// appendVT100 appends the byte sequence a terminal would send for ev.
// Runes outside ASCII produce nothing.
func appendVT100(dst []byte, ev hal.KeyEvent) []byte {
	if ev.Rune != 0 {
		if ev.Rune < 0x80 {
			return append(dst, byte(ev.Rune))
		}
		return dst
	}

	switch ev.Code {
	case hal.KeyEnter:
		return append(dst, '\r')
	case hal.KeyEscape:
		return append(dst, 0x1b)
	case hal.KeyBackspace:
		return append(dst, 0x7f)
	case hal.KeyTab:
		return append(dst, '\t')
	case hal.KeyUp:
		return append(dst, "\x1b[A"...)
	case hal.KeyDown:
		return append(dst, "\x1b[B"...)
	case hal.KeyRight:
		return append(dst, "\x1b[C"...)
	case hal.KeyLeft:
		return append(dst, "\x1b[D"...)
	case hal.KeyDelete:
		return append(dst, "\x1b[3~"...)
	case hal.KeyHome:
		return append(dst, "\x1b[H"...)
	case hal.KeyEnd:
		return append(dst, "\x1b[F"...)
	default:
		return dst
	}
}
