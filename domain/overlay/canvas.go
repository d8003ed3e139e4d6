package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Background is the colour the surface is cleared to each iteration.
var Background = color.RGBA{A: 0xFF}

// Canvas is the overlay's backing surface. It is owned by the render loop.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas allocates a w x h surface cleared to Background.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	c.Clear()
	return c
}

// Image exposes the surface pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Size returns the surface dimensions.
func (c *Canvas) Size() image.Point { return c.img.Bounds().Size() }

// Clear fills the surface with Background.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

// BlitScaled scales frame to the full surface size and copies it in.
func (c *Canvas) BlitScaled(frame image.Image) {
	if frame == nil {
		return
	}
	size := c.Size()
	scaled := imaging.Resize(frame, size.X, size.Y, imaging.NearestNeighbor)
	draw.Draw(c.img, c.img.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
}

// RGBAToBGRA converts RGBA pixels from src into the BGRA layout GDI expects.
func RGBAToBGRA(dst, src []byte) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	n -= n % 4
	for i := 0; i < n; i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}
