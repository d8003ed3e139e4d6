// Package caffe binds the MobileNet-SSD Caffe artifacts through OpenCV's dnn module.
package caffe

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/soocke/detection-overlay-go/domain/detect"
)

// Net is a loaded Caffe network. It is not safe for concurrent use; the
// render loop owns one instance per activation.
type Net struct {
	net  gocv.Net
	spec detect.InputSpec
}

// Load resolves the artifact pair in dir and reads it into a network.
func Load(dir string) (*Net, error) {
	a, err := detect.ResolveArtifacts(dir)
	if err != nil {
		return nil, err
	}
	net := gocv.ReadNetFromCaffe(a.Topology, a.Weights)
	if net.Empty() {
		_ = net.Close()
		return nil, fmt.Errorf("%w: %s", detect.ErrModelCorrupt, a.Weights)
	}
	return &Net{net: net, spec: detect.MobileNetSSD}, nil
}

// Forward resizes frame to the input size, normalises it into a blob and
// returns the rows of the [1,1,N,7] detection output.
func (n *Net) Forward(frame *image.RGBA) ([]float32, error) {
	if frame == nil {
		return nil, fmt.Errorf("caffe: nil frame")
	}
	// ImageToMatRGB yields BGR channel order, which is what the Caffe model expects.
	img, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("caffe: convert frame: %w", err)
	}
	defer img.Close()

	size := image.Pt(n.spec.Width, n.spec.Height)
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, size, 0, 0, gocv.InterpolationLinear)

	m := n.spec.Mean
	blob := gocv.BlobFromImage(resized, n.spec.Scale, size, gocv.NewScalar(m, m, m, 0), false, false)
	defer blob.Close()

	n.net.SetInput(blob, "")
	prob := n.net.Forward("")
	defer prob.Close()
	if prob.Empty() {
		return nil, fmt.Errorf("caffe: empty output")
	}

	rows := gocv.GetBlobChannel(prob, 0, 0)
	defer rows.Close()
	if rows.Cols() != detect.RowLen {
		return nil, fmt.Errorf("caffe: unexpected output width %d", rows.Cols())
	}
	out := make([]float32, 0, rows.Rows()*detect.RowLen)
	for r := 0; r < rows.Rows(); r++ {
		for c := 0; c < detect.RowLen; c++ {
			out = append(out, rows.GetFloatAt(r, c))
		}
	}
	return out, nil
}

// Close releases the native network.
func (n *Net) Close() error {
	if n == nil {
		return nil
	}
	return n.net.Close()
}

var _ detect.Network = (*Net)(nil)
