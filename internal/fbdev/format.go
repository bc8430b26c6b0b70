package fbdev

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jmylchreest/pimirror/internal/display"
)

// ErrUnsupportedLayout is returned when a framebuffer reports a pixel
// layout pimirror cannot convert.
var ErrUnsupportedLayout = errors.New("unsupported framebuffer pixel layout")

// pixelLayout captures how one pixel is packed in framebuffer memory.
// For 32bpp layouts r, g, b and a are byte positions within the pixel,
// derived from the bitfield offsets. 16bpp layouts are always 5-6-5 and
// ignore the byte positions.
type pixelLayout struct {
	format display.Format
	bpp    int // bytes per pixel
	r      int
	g      int
	b      int
	a      int // -1 when the layout has no alpha channel
}

// layoutFor derives the pixel layout from the variable screen info.
// Bitfield offsets are bit positions within a little-endian pixel value,
// so a byte position is simply offset/8.
func layoutFor(v varScreenInfo) (pixelLayout, error) {
	switch v.BitsPerPixel {
	case 16:
		if v.Red.Offset == 11 && v.Red.Length == 5 &&
			v.Green.Offset == 5 && v.Green.Length == 6 &&
			v.Blue.Offset == 0 && v.Blue.Length == 5 {
			return pixelLayout{format: display.FormatRGB565, bpp: 2, r: -1, g: -1, b: -1, a: -1}, nil
		}
		return pixelLayout{}, fmt.Errorf("%w: 16bpp with red %d/%d green %d/%d blue %d/%d",
			ErrUnsupportedLayout,
			v.Red.Offset, v.Red.Length, v.Green.Offset, v.Green.Length, v.Blue.Offset, v.Blue.Length)

	case 32:
		layout := pixelLayout{
			bpp: 4,
			r:   int(v.Red.Offset) / 8,
			g:   int(v.Green.Offset) / 8,
			b:   int(v.Blue.Offset) / 8,
			a:   -1,
		}
		switch {
		case layout.r == 0:
			layout.format = display.FormatRGBA8888
		case v.Transp.Length > 0:
			layout.format = display.FormatARGB8888
		default:
			layout.format = display.FormatXRGB8888
		}
		if v.Transp.Length > 0 {
			layout.a = int(v.Transp.Offset) / 8
		}
		return layout, nil
	}

	return pixelLayout{}, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedLayout, v.BitsPerPixel)
}

// packRow converts one row of RGBA pixels into framebuffer bytes.
// Destination pixels are always fully opaque.
func (l pixelLayout) packRow(dst, src []byte) {
	switch l.bpp {
	case 2:
		for i, j := 0, 0; i < len(src); i, j = i+4, j+2 {
			binary.LittleEndian.PutUint16(dst[j:], packRGB565(src[i], src[i+1], src[i+2]))
		}
	case 4:
		for i := 0; i < len(src); i += 4 {
			dst[i+l.r] = src[i]
			dst[i+l.g] = src[i+1]
			dst[i+l.b] = src[i+2]
			if l.a >= 0 {
				dst[i+l.a] = 0xff
			}
		}
	}
}

// unpackRow converts one row of framebuffer bytes into RGBA pixels.
func (l pixelLayout) unpackRow(dst, src []byte) {
	switch l.bpp {
	case 2:
		for i, j := 0, 0; j < len(src); i, j = i+4, j+2 {
			r, g, b := unpackRGB565(binary.LittleEndian.Uint16(src[j:]))
			dst[i] = r
			dst[i+1] = g
			dst[i+2] = b
			dst[i+3] = 0xff
		}
	case 4:
		for i := 0; i < len(src); i += 4 {
			dst[i] = src[i+l.r]
			dst[i+1] = src[i+l.g]
			dst[i+2] = src[i+l.b]
			dst[i+3] = 0xff
		}
	}
}

// packRGB565 packs 8-bit channels into a 5-6-5 pixel value.
func packRGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// unpackRGB565 expands a 5-6-5 pixel value back to 8-bit channels.
// The high bits are replicated into the low bits so full intensity
// maps back to 255 rather than 248.
func unpackRGB565(v uint16) (r, g, b uint8) {
	r = uint8(v>>11) << 3
	g = uint8(v>>5&0x3f) << 2
	b = uint8(v&0x1f) << 3
	r |= r >> 5
	g |= g >> 6
	b |= b >> 5
	return r, g, b
}
