package capture

import (
	"fmt"
	"image"

	"github.com/jmylchreest/pimirror/internal/display"
	"github.com/jmylchreest/pimirror/internal/fbdev"
)

// fbSource captures by reading a framebuffer device. It serves
// console-only systems where no compositor is running.
type fbSource struct {
	dev   *fbdev.Device
	frame *image.RGBA // reused by every Capture
}

func newFBSource(number int) (*fbSource, error) {
	dev, err := fbdev.OpenReadOnly(number)
	if err != nil {
		return nil, &BackendError{
			Backend: string(BackendFB),
			Message: fmt.Sprintf("failed to open framebuffer %d", number),
			Err:     err,
		}
	}

	return &fbSource{dev: dev, frame: display.NewFrame(dev.Info())}, nil
}

func (s *fbSource) Info() display.Info {
	return s.dev.Info()
}

func (s *fbSource) Capture() (*image.RGBA, error) {
	if err := s.dev.ReadFrame(s.frame); err != nil {
		return nil, &BackendError{
			Backend: string(BackendFB),
			Message: fmt.Sprintf("failed to read framebuffer %d", s.dev.Info().Display),
			Err:     err,
		}
	}
	return s.frame, nil
}

func (s *fbSource) Close() error {
	return s.dev.Close()
}
