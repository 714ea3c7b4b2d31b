package hal

// RGB565 is a 16bpp pixel, rrrrrggggggbbbbb, stored little-endian.
type RGB565 uint16

// RGB packs 8-bit channels into a pixel.
func RGB(r, g, b uint8) RGB565 {
	return RGB565(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB expands p back to 8-bit channels.
func (p RGB565) RGB() (r, g, b uint8) {
	r = uint8(uint32(p>>11&0x1f) * 255 / 31)
	g = uint8(uint32(p>>5&0x3f) * 255 / 63)
	b = uint8(uint32(p&0x1f) * 255 / 31)
	return r, g, b
}

// Put stores p in b[0:2].
func (p RGB565) Put(b []byte) {
	b[0] = byte(p)
	b[1] = byte(p >> 8)
}

// Fill paints every whole pixel in buf.
func (p RGB565) Fill(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		p.Put(buf[i:])
	}
}

// LoadRGB565 reads the pixel in b[0:2].
func LoadRGB565(b []byte) RGB565 {
	return RGB565(b[0]) | RGB565(b[1])<<8
}

// PixelOffset returns the byte offset of (x, y) in fb's buffer, or -1 when
// the point is off screen or fb is not RGB565.
func PixelOffset(fb Framebuffer, x, y int) int {
	if fb == nil || fb.Format() != PixelFormatRGB565 {
		return -1
	}
	if x < 0 || y < 0 || x >= fb.Width() || y >= fb.Height() {
		return -1
	}
	off := y*fb.StrideBytes() + x*2
	if off+1 >= len(fb.Buffer()) {
		return -1
	}
	return off
}
