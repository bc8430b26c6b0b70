// Package display defines the shared display vocabulary for pimirror.
package display

import (
	"errors"
	"fmt"
	"image"
)

// Format identifies the pixel memory layout of a display.
type Format string

const (
	FormatXRGB8888 Format = "xrgb8888" // 32bpp, blue lowest byte, padding in the high byte
	FormatARGB8888 Format = "argb8888" // 32bpp, alpha in the high byte
	FormatRGBA8888 Format = "rgba8888" // 32bpp, red lowest byte
	FormatRGB565   Format = "rgb565"   // 16bpp packed 5-6-5
	FormatUnknown  Format = "unknown"
)

// ValidFormats returns all pixel formats pimirror can convert to and from.
func ValidFormats() []Format {
	return []Format{FormatXRGB8888, FormatARGB8888, FormatRGBA8888, FormatRGB565}
}

// BytesPerPixel returns the storage size of one pixel, or 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGB565:
		return 2
	case FormatXRGB8888, FormatARGB8888, FormatRGBA8888:
		return 4
	default:
		return 0
	}
}

// Info describes one end of a mirror: which display the pixels live on and
// their geometry. Capture backends and framebuffer devices both report it.
type Info struct {
	Display int    `json:"display"`          // display index or framebuffer number
	Device  string `json:"device,omitempty"` // backing device, e.g. "/dev/fb1" or "screen"
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Stride  int    `json:"stride,omitempty"` // bytes per row; 0 means tightly packed
	Format  Format `json:"format,omitempty"`
}

// Validation errors for display geometry.
var (
	ErrInvalidWidth  = errors.New("width must be greater than 0")
	ErrInvalidHeight = errors.New("height must be greater than 0")
)

// Validate checks that the reported geometry is usable.
func (i Info) Validate() error {
	if i.Width <= 0 {
		return ErrInvalidWidth
	}
	if i.Height <= 0 {
		return ErrInvalidHeight
	}
	return nil
}

// Bounds returns the display area as a rectangle at the origin.
func (i Info) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

// String renders the geometry the way log messages reference a display,
// e.g. "[0] 1920x1080".
func (i Info) String() string {
	return fmt.Sprintf("[%d] %dx%d", i.Display, i.Width, i.Height)
}

// NewFrame allocates an RGBA buffer covering the display.
// Callers allocate one frame up front and reuse it for every copy.
func NewFrame(info Info) *image.RGBA {
	return image.NewRGBA(info.Bounds())
}
