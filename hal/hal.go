// Package hal is the boundary between sparkshell and the machine it runs on:
// the console device, log output, LED and pins, an optional framebuffer and
// keyboard, and the millisecond tick.
package hal

import (
	"errors"
	"io"
)

var ErrNotImplemented = errors.New("not implemented")

// HAL is implemented once per target (host, TinyGo board).
type HAL interface {
	Logger() Logger
	LED() LED
	GPIO() GPIO
	Serial() Serial
	Display() Display
	Input() Input
	Time() Time
}

// Serial is a console byte stream: a UART, the process stdio or a telnet
// session. Read blocks until at least one byte arrives. Devices that also
// implement io.Closer are closed when their shell is torn down.
type Serial interface {
	io.Reader
	io.Writer
}

// Logger receives whole log lines without a trailing newline.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

type LED interface {
	High()
	Low()
}

// Time delivers tick sequence numbers, one per millisecond. Ticks may be
// dropped when the reader falls behind; the sequence number still advances.
type Time interface {
	Ticks() <-chan uint64
}

// Display and Input return nil devices on boards without them.
type Display interface {
	Framebuffer() Framebuffer
}

type Input interface {
	Keyboard() Keyboard
}

type PixelFormat uint8

const (
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a row-major pixel buffer. Present pushes it to the screen.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

type Keyboard interface {
	Events() <-chan KeyEvent
}

// KeyCode names the non-text keys the console understands.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyDelete
	KeyHome
	KeyEnd
)

// KeyEvent carries either a Rune (text and control characters) or a Code.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}
