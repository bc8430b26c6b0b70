package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/jmylchreest/pimirror/internal/display"
)

// screenSource captures a compositor or X display through the
// screenshot library.
type screenSource struct {
	number int
	bounds image.Rectangle
	info   display.Info
}

func newScreenSource(number int) (*screenSource, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplays
	}
	if number < 0 || number >= n {
		return nil, &BackendError{
			Backend: string(BackendScreen),
			Message: fmt.Sprintf("display %d out of range, %d display(s) active", number, n),
		}
	}

	bounds := screenshot.GetDisplayBounds(number)
	info := display.Info{
		Display: number,
		Device:  "screen",
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Format:  display.FormatRGBA8888,
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	return &screenSource{number: number, bounds: bounds, info: info}, nil
}

// Info returns the display geometry at open time.
func (s *screenSource) Info() display.Info {
	return s.info
}

// Capture grabs the current display contents.
func (s *screenSource) Capture() (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(s.bounds)
	if err != nil {
		return nil, &BackendError{
			Backend: string(BackendScreen),
			Message: fmt.Sprintf("failed to capture display %d", s.number),
			Err:     err,
		}
	}
	return img, nil
}

func (s *screenSource) Close() error {
	return nil
}

// ListScreens reports the displays visible to the screen backend.
func ListScreens() []display.Info {
	n := screenshot.NumActiveDisplays()
	infos := make([]display.Info, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		infos = append(infos, display.Info{
			Display: i,
			Device:  "screen",
			Width:   bounds.Dx(),
			Height:  bounds.Dy(),
			Format:  display.FormatRGBA8888,
		})
	}
	return infos
}
