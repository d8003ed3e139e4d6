// Package overlay owns the topmost, click-through window the render loop presents into.
package overlay

import (
	"errors"
	"image"

	"github.com/kbinani/screenshot"
)

var (
	// ErrWindowStyle reports that the window could not be made layered,
	// click-through and topmost. The window is destroyed before returning it.
	ErrWindowStyle = errors.New("overlay: window style not applied")
	// ErrUnsupported is returned by Open on platforms without an overlay implementation.
	ErrUnsupported = errors.New("overlay: unsupported platform")
)

// Window is a native overlay window. All methods must be called from the
// goroutine that opened it, which must be locked to its OS thread.
type Window interface {
	// Present copies the canvas to the window.
	Present(c *Canvas) error
	// PumpEvents drains pending window-system messages and reports whether a
	// quit or close request was seen.
	PumpEvents() bool
	// ExitKeyDown reports whether the configured exit key is currently held.
	ExitKeyDown() bool
	// Close destroys the window and restores the cursor. Safe to call twice.
	Close() error
}

// Options configures Open.
type Options struct {
	Title string
	// Bounds is the window rectangle in virtual-screen coordinates.
	Bounds  image.Rectangle
	Alpha   uint8
	ExitKey string
}

// Open creates the overlay window. Either every style is applied before the
// window becomes visible, or no window exists when the error is returned.
func Open(opts Options) (Window, error) {
	if opts.Bounds.Empty() {
		return nil, errors.New("overlay: empty bounds")
	}
	if opts.Alpha == 0 {
		opts.Alpha = 0xFF
	}
	return openWindow(opts)
}

// Displays enumerates active display bounds in system order.
func Displays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}

// SelectDisplay returns displays[preferred] when it exists, else the first
// display. The zero rectangle is returned for an empty list.
func SelectDisplay(displays []image.Rectangle, preferred int) image.Rectangle {
	if len(displays) == 0 {
		return image.Rectangle{}
	}
	if preferred >= 0 && preferred < len(displays) {
		return displays[preferred]
	}
	return displays[0]
}

// CenterIn returns a size.X x size.Y rectangle centred in display.
func CenterIn(display image.Rectangle, size image.Point) image.Rectangle {
	x := display.Min.X + (display.Dx()-size.X)/2
	y := display.Min.Y + (display.Dy()-size.Y)/2
	return image.Rect(x, y, x+size.X, y+size.Y)
}
