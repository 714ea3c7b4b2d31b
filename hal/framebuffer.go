package hal

import "sync"

// memFramebuffer is an RGB565 framebuffer in plain memory. The window
// backend copies it out under the lock with snapshot.
type memFramebuffer struct {
	width, height int

	mu  sync.Mutex
	buf []byte
}

func newMemFramebuffer(width, height int) *memFramebuffer {
	return &memFramebuffer{
		width:  width,
		height: height,
		buf:    make([]byte, width*height*2),
	}
}

func (f *memFramebuffer) Width() int          { return f.width }
func (f *memFramebuffer) Height() int         { return f.height }
func (f *memFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *memFramebuffer) StrideBytes() int    { return f.width * 2 }
func (f *memFramebuffer) Buffer() []byte      { return f.buf }
func (f *memFramebuffer) Present() error      { return nil }

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	RGB(r, g, b).Fill(f.buf)
}

func (f *memFramebuffer) snapshot(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}
