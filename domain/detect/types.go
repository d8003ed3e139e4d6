package detect

import (
	"errors"
	"image"
)

var (
	// ErrModelMissing reports that an artifact file is absent or unreadable.
	ErrModelMissing = errors.New("detect: model artifact missing")
	// ErrModelCorrupt reports that the artifacts exist but could not be bound into a network.
	ErrModelCorrupt = errors.New("detect: model artifact corrupt")
	// ErrInference reports a failed forward pass or an undecodable output tensor.
	ErrInference = errors.New("detect: inference failed")
)

// Detection is one decoded candidate in frame pixel coordinates.
type Detection struct {
	Class      int
	Confidence float32
	Box        image.Rectangle
}

// InputSpec describes the fixed network input and its normalisation.
// Pixels are transformed as (p - Mean) * Scale.
type InputSpec struct {
	Width  int
	Height int
	Scale  float64
	Mean   float64
}

// MobileNetSSD is the input contract of the Caffe MobileNet-SSD detector.
var MobileNetSSD = InputSpec{Width: 300, Height: 300, Scale: 0.007843, Mean: 127.5}

// Network is a loaded detector. Forward runs one blocking inference pass and
// returns the raw SSD output: consecutive rows of RowLen float32 values.
type Network interface {
	Forward(frame *image.RGBA) ([]float32, error)
	Close() error
}

// Detector turns a frame into detections. No confidence floor is applied.
type Detector interface {
	Detect(frame *image.RGBA) ([]Detection, error)
}
