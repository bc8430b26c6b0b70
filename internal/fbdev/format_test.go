package fbdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pimirror/internal/display"
)

func TestPackRGB565(t *testing.T) {
	assert.Equal(t, uint16(0x0000), packRGB565(0, 0, 0))
	assert.Equal(t, uint16(0xffff), packRGB565(255, 255, 255))
	assert.Equal(t, uint16(0xf800), packRGB565(255, 0, 0))
	assert.Equal(t, uint16(0x07e0), packRGB565(0, 255, 0))
	assert.Equal(t, uint16(0x001f), packRGB565(0, 0, 255))
}

func TestUnpackRGB565(t *testing.T) {
	r, g, b := unpackRGB565(0xffff)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(255), g)
	assert.Equal(t, uint8(255), b)

	r, g, b = unpackRGB565(0xf800)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), b)

	r, g, b = unpackRGB565(0x0000)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), b)
}

func TestRGB565_RoundTripQuantized(t *testing.T) {
	// 5-6-5 drops the low bits, so a round trip must preserve any value
	// that is already quantized to the channel depth.
	for _, c := range []struct{ r, g, b uint8 }{
		{0x00, 0x00, 0x00},
		{0xff, 0xff, 0xff},
		{0x08, 0x04, 0x08},
		{0x88, 0x44, 0xc8},
	} {
		r, g, b := unpackRGB565(packRGB565(c.r, c.g, c.b))
		assert.Equal(t, c.r&0xf8|c.r>>5, r)
		assert.Equal(t, c.g&0xfc|c.g>>6, g)
		assert.Equal(t, c.b&0xf8|c.b>>5, b)
	}
}

func TestLayoutFor_RGB565(t *testing.T) {
	v := varScreenInfo{
		BitsPerPixel: 16,
		Red:          bitField{Offset: 11, Length: 5},
		Green:        bitField{Offset: 5, Length: 6},
		Blue:         bitField{Offset: 0, Length: 5},
	}

	layout, err := layoutFor(v)
	require.NoError(t, err)
	assert.Equal(t, display.FormatRGB565, layout.format)
	assert.Equal(t, 2, layout.bpp)
}

func TestLayoutFor_XRGB8888(t *testing.T) {
	v := varScreenInfo{
		BitsPerPixel: 32,
		Red:          bitField{Offset: 16, Length: 8},
		Green:        bitField{Offset: 8, Length: 8},
		Blue:         bitField{Offset: 0, Length: 8},
	}

	layout, err := layoutFor(v)
	require.NoError(t, err)
	assert.Equal(t, display.FormatXRGB8888, layout.format)
	assert.Equal(t, 4, layout.bpp)
	assert.Equal(t, 2, layout.r)
	assert.Equal(t, 1, layout.g)
	assert.Equal(t, 0, layout.b)
	assert.Equal(t, -1, layout.a)
}

func TestLayoutFor_ARGB8888(t *testing.T) {
	v := varScreenInfo{
		BitsPerPixel: 32,
		Red:          bitField{Offset: 16, Length: 8},
		Green:        bitField{Offset: 8, Length: 8},
		Blue:         bitField{Offset: 0, Length: 8},
		Transp:       bitField{Offset: 24, Length: 8},
	}

	layout, err := layoutFor(v)
	require.NoError(t, err)
	assert.Equal(t, display.FormatARGB8888, layout.format)
	assert.Equal(t, 3, layout.a)
}

func TestLayoutFor_RGBA8888(t *testing.T) {
	v := varScreenInfo{
		BitsPerPixel: 32,
		Red:          bitField{Offset: 0, Length: 8},
		Green:        bitField{Offset: 8, Length: 8},
		Blue:         bitField{Offset: 16, Length: 8},
		Transp:       bitField{Offset: 24, Length: 8},
	}

	layout, err := layoutFor(v)
	require.NoError(t, err)
	assert.Equal(t, display.FormatRGBA8888, layout.format)
	assert.Equal(t, 0, layout.r)
	assert.Equal(t, 2, layout.b)
}

func TestLayoutFor_Unsupported(t *testing.T) {
	_, err := layoutFor(varScreenInfo{BitsPerPixel: 24})
	assert.ErrorIs(t, err, ErrUnsupportedLayout)

	// 15-bit 5-5-5 is not convertible
	_, err = layoutFor(varScreenInfo{
		BitsPerPixel: 16,
		Red:          bitField{Offset: 10, Length: 5},
		Green:        bitField{Offset: 5, Length: 5},
		Blue:         bitField{Offset: 0, Length: 5},
	})
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
}

func TestPixelLayout_PackRow32(t *testing.T) {
	layout := pixelLayout{format: display.FormatXRGB8888, bpp: 4, r: 2, g: 1, b: 0, a: -1}

	src := []byte{
		0x11, 0x22, 0x33, 0xff, // pixel 0: R G B A
		0xaa, 0xbb, 0xcc, 0xff, // pixel 1
	}
	dst := make([]byte, 8)
	layout.packRow(dst, src)

	assert.Equal(t, []byte{0x33, 0x22, 0x11, 0x00, 0xcc, 0xbb, 0xaa, 0x00}, dst)
}

func TestPixelLayout_PackRowAlpha(t *testing.T) {
	layout := pixelLayout{format: display.FormatARGB8888, bpp: 4, r: 2, g: 1, b: 0, a: 3}

	src := []byte{0x11, 0x22, 0x33, 0x00} // source alpha is ignored
	dst := make([]byte, 4)
	layout.packRow(dst, src)

	assert.Equal(t, []byte{0x33, 0x22, 0x11, 0xff}, dst)
}

func TestPixelLayout_RoundTrip32(t *testing.T) {
	layout := pixelLayout{format: display.FormatXRGB8888, bpp: 4, r: 2, g: 1, b: 0, a: -1}

	src := []byte{0x10, 0x20, 0x30, 0xff, 0x40, 0x50, 0x60, 0xff}
	packed := make([]byte, 8)
	layout.packRow(packed, src)

	unpacked := make([]byte, 8)
	layout.unpackRow(unpacked, packed)
	assert.Equal(t, src, unpacked)
}

func TestPixelLayout_RoundTrip565(t *testing.T) {
	layout := pixelLayout{format: display.FormatRGB565, bpp: 2, r: -1, g: -1, b: -1, a: -1}

	// Values quantized to 5-6-5 survive the round trip exactly.
	src := []byte{0x08, 0x04, 0x08, 0xff, 0xff, 0xff, 0xff, 0xff}
	packed := make([]byte, 4)
	layout.packRow(packed, src)

	unpacked := make([]byte, 8)
	layout.unpackRow(unpacked, packed)
	assert.Equal(t, src, unpacked)
}
