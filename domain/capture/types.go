package capture

import (
	"errors"
	"image"
)

// ErrCaptureTransient marks a capture failure the caller should treat as a
// skipped frame (display reconfiguration, desktop switch, locked session).
var ErrCaptureTransient = errors.New("capture: transient failure")

// Source grabs the current on-screen pixels of a screen-space rectangle.
// Returned frames are top-left origin, RGB ordered with opaque alpha and have
// bounds starting at (0,0). Callers may hand frames back through RecycleFrame.
type Source interface {
	Capture(region image.Rectangle) (*image.RGBA, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(region image.Rectangle) (*image.RGBA, error)

func (f SourceFunc) Capture(region image.Rectangle) (*image.RGBA, error) { return f(region) }

// New returns the Source for the named backend. Unknown names and "gdi" on
// non-Windows platforms fall back to the screenshot backend.
func New(backend string) Source {
	if backend == "gdi" {
		if s := platformSource(); s != nil {
			return s
		}
	}
	return ScreenSource{}
}
