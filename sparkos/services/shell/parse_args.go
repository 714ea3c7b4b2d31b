package shell

import "errors"

var (
	errTooManyArgs       = errors.New("too many arguments")
	errUnterminatedQuote = errors.New("unterminated quote")
)

type span struct{ start, end int }

// tokenizer splits a line into at most len(spans) tokens. Unquoted and
// unescaped token bytes are copied into buf so a single string conversion
// covers every token of a line.
type tokenizer struct {
	buf   []byte
	spans []span
}

func newTokenizer(bufSize, maxArgs int) tokenizer {
	return tokenizer{
		buf:   make([]byte, 0, bufSize),
		spans: make([]span, 0, maxArgs),
	}
}

// split tokenizes line. Tokens are separated by spaces or tabs; single quotes
// take bytes literally, double quotes allow backslash escapes, and a
// backslash outside quotes escapes the next byte.
func (t *tokenizer) split(line []byte) (int, error) {
	type state uint8
	const (
		stNone state = iota
		stSingle
		stDouble
		stEscape
		stDoubleEscape
	)

	t.buf = t.buf[:0]
	t.spans = t.spans[:0]
	st := stNone
	in := false
	start := 0

	open := func() error {
		if in {
			return nil
		}
		if len(t.spans) == cap(t.spans) {
			return errTooManyArgs
		}
		in = true
		start = len(t.buf)
		return nil
	}
	flush := func() {
		if !in {
			return
		}
		t.spans = append(t.spans, span{start: start, end: len(t.buf)})
		in = false
	}

	for _, b := range line {
		switch st {
		case stEscape:
			t.buf = append(t.buf, b)
			st = stNone
			continue
		case stDoubleEscape:
			t.buf = append(t.buf, b)
			st = stDouble
			continue
		case stSingle:
			if b == '\'' {
				st = stNone
			} else {
				t.buf = append(t.buf, b)
			}
			continue
		case stDouble:
			switch b {
			case '"':
				st = stNone
			case '\\':
				st = stDoubleEscape
			default:
				t.buf = append(t.buf, b)
			}
			continue
		}

		switch b {
		case ' ', '\t':
			flush()
			continue
		}
		if err := open(); err != nil {
			return 0, err
		}
		switch b {
		case '\\':
			st = stEscape
		case '\'':
			st = stSingle
		case '"':
			st = stDouble
		default:
			t.buf = append(t.buf, b)
		}
	}
	if st != stNone {
		return 0, errUnterminatedQuote
	}
	flush()
	return len(t.spans), nil
}
