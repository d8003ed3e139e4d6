package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ScreenSource captures through github.com/vova616/screenshot.
type ScreenSource struct{}

// Capture grabs region and copies it into a pooled, origin-rebased frame.
func (ScreenSource) Capture(region image.Rectangle) (*image.RGBA, error) {
	if region.Empty() {
		return nil, fmt.Errorf("%w: empty region", ErrCaptureTransient)
	}
	img, err := screenshot.CaptureRect(region)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureTransient, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrCaptureTransient)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != region.Dx() || h != region.Dy() {
		return nil, fmt.Errorf("%w: got %dx%d for region %v", ErrCaptureTransient, w, h, region)
	}
	frame := acquireFrame(w, h)
	off := img.PixOffset(b.Min.X, b.Min.Y)
	normalizeRGBA(frame.Pix, img.Pix[off:], img.Stride, frame.Stride, w, h)
	return frame, nil
}
