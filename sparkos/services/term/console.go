// Package term provides a display console: a hal.Serial whose output is
// rendered on the framebuffer by tinyterm and whose input comes from the
// keyboard as VT100 bytes.
package term

import (
	"errors"
	"sync"

	"sparkshell/hal"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var (
	ErrNoDisplay = errors.New("term: no framebuffer")
	ErrNoInput   = errors.New("term: no keyboard")
	ErrClosed    = errors.New("term: closed")
)

const (
	fontHeight = 10
	fontOffset = 6
)

// Console is a framebuffer terminal with keyboard input.
type Console struct {
	fb hal.Framebuffer
	d  *fbDisplay

	wmu sync.Mutex
	t   *tinyterm.Terminal

	rmu     sync.Mutex
	events  <-chan hal.KeyEvent
	pending []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewConsole builds a console over the HAL display and keyboard.
func NewConsole(disp hal.Display, in hal.Input) (*Console, error) {
	var fb hal.Framebuffer
	if disp != nil {
		fb = disp.Framebuffer()
	}
	if fb == nil {
		return nil, ErrNoDisplay
	}
	var kbd hal.Keyboard
	if in != nil {
		kbd = in.Keyboard()
	}
	if kbd == nil || kbd.Events() == nil {
		return nil, ErrNoInput
	}

	c := &Console{
		fb:      fb,
		d:       newFBDisplay(fb),
		events:  kbd.Events(),
		pending: make([]byte, 0, 8),
		done:    make(chan struct{}),
	}
	c.reset()
	return c, nil
}

func (c *Console) reset() {
	c.t = tinyterm.NewTerminal(c.d)
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        fontHeight,
		FontOffset:        fontOffset,
		UseSoftwareScroll: true,
	})
	c.fb.ClearRGB(0, 0, 0)
	_ = c.fb.Present()
}

// Write renders p and presents the framebuffer.
func (c *Console) Write(p []byte) (int, error) {
	select {
	case <-c.done:
		return 0, ErrClosed
	default:
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	n, err := c.t.Write(p)
	c.t.Display()
	return n, err
}

// Clear blanks the screen and homes the cursor.
func (c *Console) Clear() {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.reset()
}

// Read blocks until a key press produces at least one byte.
func (c *Console) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for len(c.pending) == 0 {
		select {
		case <-c.done:
			return 0, ErrClosed
		case ev, ok := <-c.events:
			if !ok {
				return 0, ErrClosed
			}
			if ev.Press {
				c.pending = appendVT100(c.pending, ev)
			}
		}
	}
	n := copy(p, c.pending)
	c.pending = append(c.pending[:0], c.pending[n:]...)
	return n, nil
}

// Close unblocks Read and rejects further writes.
func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
