// Package capture provides the frame sources pimirror can mirror from.
package capture

import (
	"errors"
	"image"
	"os"

	"github.com/jmylchreest/pimirror/internal/display"
)

// Source captures frames from a display.
type Source interface {
	// Info returns the source geometry and pixel format.
	Info() display.Info

	// Capture grabs the current display contents. The returned image
	// may be reused by the next Capture call, so callers must not hold
	// on to it across iterations.
	Capture() (*image.RGBA, error)

	// Close releases the source.
	Close() error
}

// Backend selects how frames are captured.
type Backend string

const (
	BackendAuto   Backend = "auto"   // detect from the session environment
	BackendScreen Backend = "screen" // compositor or X display
	BackendFB     Backend = "fb"     // read a framebuffer device directly
)

// ValidBackends returns all backends New accepts.
func ValidBackends() []Backend {
	return []Backend{BackendAuto, BackendScreen, BackendFB}
}

// ErrNoDisplays is returned when the screen backend finds no active displays.
var ErrNoDisplays = errors.New("no active displays found")

// Detect picks the capture backend for this system. A session with a
// compositor or X server uses the screen backend; a bare console falls
// back to reading the framebuffer directly.
func Detect() Backend {
	if os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != "" {
		return BackendScreen
	}
	return BackendFB
}

// New opens a capture source for the given display number.
// BackendAuto resolves via Detect before opening.
func New(backend Backend, number int) (Source, error) {
	if backend == "" || backend == BackendAuto {
		backend = Detect()
	}

	switch backend {
	case BackendScreen:
		return newScreenSource(number)
	case BackendFB:
		return newFBSource(number)
	default:
		return nil, &BackendError{
			Backend: string(backend),
			Message: "unknown capture backend",
		}
	}
}

// BackendError represents a capture backend failure.
type BackendError struct {
	Backend string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
