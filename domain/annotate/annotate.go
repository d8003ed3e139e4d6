// Package annotate draws detection boxes and labels onto captured frames.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/soocke/detection-overlay-go/domain/detect"
)

const (
	defaultThickness = 2
	labelOffset      = 15
	paletteSeed      = 15
)

// Annotator draws boxes and "label: NN.NN%" captions at frame resolution.
type Annotator struct {
	labels    []string
	colors    []color.RGBA
	thickness int
	face      font.Face
}

// New returns an Annotator for the given label table with one stable colour per class.
func New(labels []string) *Annotator {
	return &Annotator{
		labels:    labels,
		colors:    Palette(len(labels), paletteSeed),
		thickness: defaultThickness,
		face:      basicfont.Face7x13,
	}
}

// Palette returns n colours drawn uniformly from RGB space with a fixed seed.
func Palette(n int, seed int64) []color.RGBA {
	r := rand.New(rand.NewSource(seed))
	out := make([]color.RGBA, n)
	for i := range out {
		out[i] = color.RGBA{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: 0xFF}
	}
	return out
}

// Color returns the colour assigned to class.
func (a *Annotator) Color(class int) color.RGBA {
	if class >= 0 && class < len(a.colors) {
		return a.colors[class]
	}
	return color.RGBA{G: 0xFF, A: 0xFF}
}

// Draw annotates frame in place with every detection in dets.
func (a *Annotator) Draw(frame *image.RGBA, dets []detect.Detection) {
	if a == nil || frame == nil {
		return
	}
	for _, d := range dets {
		c := a.Color(d.Class)
		Box(frame, d.Box, c, a.thickness)
		a.label(frame, Caption(a.name(d.Class), d.Confidence), d.Box.Min.X, LabelY(d.Box.Min.Y), c)
	}
}

func (a *Annotator) name(class int) string {
	if class >= 0 && class < len(a.labels) {
		return a.labels[class]
	}
	return detect.LabelFor(class)
}

func (a *Annotator) label(dst *image.RGBA, text string, x, y int, c color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: a.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Caption formats a label as "name: 50.00%".
func Caption(name string, confidence float32) string {
	return fmt.Sprintf("%s: %.2f%%", name, float64(confidence)*100)
}

// LabelY returns the caption baseline: above the box when there is room, else inside it.
func LabelY(top int) int {
	if top-labelOffset > labelOffset {
		return top - labelOffset
	}
	return top + labelOffset
}

// Box strokes r with thickness pixels inward from its edges, clipped to dst.
func Box(dst *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	if r.Empty() {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	src := image.NewUniform(c)
	edges := [4]image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(r).Intersect(dst.Bounds())
		if e.Empty() {
			continue
		}
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}
