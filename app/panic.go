package app

import (
	"fmt"
	"image/color"
	"strings"

	"sparkshell/hal"
	"sparkshell/sparkos/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	panicLineHeight = 10
	panicFontOffset = 8
)

// panicHandler reports a task panic on the HAL logger and screen.
func panicHandler(h hal.HAL) func(kernel.PanicInfo) {
	if h == nil {
		return nil
	}
	return func(info kernel.PanicInfo) {
		lines := panicLines(info)
		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}
		drawPanic(h, lines)
	}
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{
		"sparkshell panic",
		fmt.Sprintf("task: %d", info.TaskID),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// drawPanic paints the report on the framebuffer, black on white, until the
// screen is full.
func drawPanic(h hal.HAL, lines []string) {
	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}
	fb.ClearRGB(255, 255, 255)

	d := panicDisplay{fb: fb}
	fg := color.RGBA{A: 255}
	y := int16(0)
	for _, line := range lines {
		if int(y)+panicLineHeight > fb.Height() {
			break
		}
		tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 0, y+panicFontOffset, line, fg)
		y += panicLineHeight
	}
	_ = fb.Present()
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if off := hal.PixelOffset(d.fb, int(x), int(y)); off >= 0 {
		hal.RGB(c.R, c.G, c.B).Put(d.fb.Buffer()[off:])
	}
}

func (d panicDisplay) Display() error { return nil }
