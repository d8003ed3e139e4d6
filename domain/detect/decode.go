package detect

import (
	"fmt"
	"image"
)

// RowLen is the width of one SSD detection row:
// [image id, class, confidence, x0, y0, x1, y1] with normalised coordinates.
const RowLen = 7

// DecodeSSD converts raw SSD rows into detections whose boxes are
// denormalised against the original frame size (w, h), not the network input.
func DecodeSSD(raw []float32, w, h int) ([]Detection, error) {
	if len(raw)%RowLen != 0 {
		return nil, fmt.Errorf("%w: output length %d is not a multiple of %d", ErrInference, len(raw), RowLen)
	}
	out := make([]Detection, 0, len(raw)/RowLen)
	for i := 0; i < len(raw); i += RowLen {
		row := raw[i : i+RowLen]
		out = append(out, Detection{
			Class:      int(row[1]),
			Confidence: row[2],
			Box:        Denormalize(row[3], row[4], row[5], row[6], w, h),
		})
	}
	return out, nil
}

// Denormalize scales a normalised box to pixel coordinates of a w x h frame.
// Values are truncated toward zero.
func Denormalize(x0, y0, x1, y1 float32, w, h int) image.Rectangle {
	fw, fh := float64(w), float64(h)
	return image.Rect(
		int(float64(x0)*fw),
		int(float64(y0)*fh),
		int(float64(x1)*fw),
		int(float64(y1)*fh),
	)
}

// NetworkDetector adapts a Network into a Detector.
type NetworkDetector struct {
	Net Network
}

// Detect runs one forward pass and decodes every output row.
func (d NetworkDetector) Detect(frame *image.RGBA) ([]Detection, error) {
	if d.Net == nil || frame == nil {
		return nil, fmt.Errorf("%w: nil network or frame", ErrInference)
	}
	raw, err := d.Net.Forward(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	b := frame.Bounds()
	return DecodeSSD(raw, b.Dx(), b.Dy())
}
