package display

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_BytesPerPixel(t *testing.T) {
	assert.Equal(t, 2, FormatRGB565.BytesPerPixel())
	assert.Equal(t, 4, FormatXRGB8888.BytesPerPixel())
	assert.Equal(t, 4, FormatARGB8888.BytesPerPixel())
	assert.Equal(t, 4, FormatRGBA8888.BytesPerPixel())
	assert.Equal(t, 0, FormatUnknown.BytesPerPixel())
	assert.Equal(t, 0, Format("bogus").BytesPerPixel())
}

func TestValidFormats(t *testing.T) {
	formats := ValidFormats()
	require.NotEmpty(t, formats)
	for _, f := range formats {
		assert.Greater(t, f.BytesPerPixel(), 0, "format %s", f)
	}
}

func TestInfo_Validate(t *testing.T) {
	valid := Info{Display: 0, Width: 1920, Height: 1080}
	require.NoError(t, valid.Validate())

	assert.ErrorIs(t, Info{Width: 0, Height: 1080}.Validate(), ErrInvalidWidth)
	assert.ErrorIs(t, Info{Width: -1, Height: 1080}.Validate(), ErrInvalidWidth)
	assert.ErrorIs(t, Info{Width: 1920, Height: 0}.Validate(), ErrInvalidHeight)
}

func TestInfo_Bounds(t *testing.T) {
	info := Info{Width: 320, Height: 240}
	assert.Equal(t, image.Rect(0, 0, 320, 240), info.Bounds())
}

func TestInfo_String(t *testing.T) {
	info := Info{Display: 1, Width: 320, Height: 240}
	assert.Equal(t, "[1] 320x240", info.String())
}

func TestNewFrame(t *testing.T) {
	frame := NewFrame(Info{Width: 4, Height: 2})
	require.NotNil(t, frame)
	assert.Equal(t, image.Rect(0, 0, 4, 2), frame.Bounds())
	// RGBA frames are 4 bytes per pixel
	assert.Len(t, frame.Pix, 4*2*4)
}
