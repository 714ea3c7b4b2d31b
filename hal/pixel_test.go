package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGB565RoundTrip(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    RGB565
	}{
		{0, 0, 0, 0x0000},
		{255, 255, 255, 0xffff},
		{255, 0, 0, 0xf800},
		{0, 255, 0, 0x07e0},
		{0, 0, 255, 0x001f},
	}
	for _, tc := range cases {
		p := RGB(tc.r, tc.g, tc.b)
		assert.Equal(t, tc.want, p)
		r, g, b := p.RGB()
		assert.Equal(t, [3]uint8{tc.r, tc.g, tc.b}, [3]uint8{r, g, b})
	}
}

func TestRGB565Bytes(t *testing.T) {
	buf := make([]byte, 5)
	RGB565(0xabcd).Fill(buf)
	assert.Equal(t, []byte{0xcd, 0xab, 0xcd, 0xab, 0}, buf, "odd tail byte is left alone")
	assert.Equal(t, RGB565(0xabcd), LoadRGB565(buf[2:]))
}
