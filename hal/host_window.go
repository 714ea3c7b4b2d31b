//go:build !tinygo && cgo

package hal

import (
	"image"

	"sparkshell/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	windowScale = 2
	windowTPS   = 60
)

// RunWindow shows the framebuffer in a desktop window and feeds it keyboard
// input. newApp's step runs once per frame, after the tick. It returns when
// the window is closed or step fails.
func RunWindow(hc HostConfig, newApp func(HAL) (func() error, error)) error {
	h := newHostHAL(hc)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	fb := h.fb
	w := &window{
		h:    h,
		step: step,
		raw:  make([]byte, len(fb.buf)),
		rgba: image.NewRGBA(image.Rect(0, 0, fb.width, fb.height)),
		img:  ebiten.NewImage(fb.width, fb.height),
	}
	ebiten.SetWindowTitle("sparkshell " + buildinfo.Short())
	ebiten.SetWindowSize(fb.width*windowScale, fb.height*windowScale)
	ebiten.SetTPS(windowTPS)
	return ebiten.RunGame(w)
}

// window is the ebiten.Game around a host HAL.
type window struct {
	h    *hostHAL
	step func() error

	raw  []byte
	rgba *image.RGBA
	img  *ebiten.Image
}

func (w *window) Update() error {
	w.h.kbd.poll()
	w.h.t.step(1)
	if w.step == nil {
		return nil
	}
	return w.step()
}

func (w *window) Draw(screen *ebiten.Image) {
	w.h.fb.snapshot(w.raw)
	pix := w.rgba.Pix
	for i, j := 0, 0; i+1 < len(w.raw) && j+3 < len(pix); i, j = i+2, j+4 {
		pix[j], pix[j+1], pix[j+2] = LoadRGB565(w.raw[i:]).RGB()
		pix[j+3] = 0xff
	}
	w.img.WritePixels(pix)
	screen.DrawImage(w.img, nil)
}

func (w *window) Layout(int, int) (int, int) {
	return w.h.fb.width, w.h.fb.height
}
