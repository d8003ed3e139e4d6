package capture

import (
	"image"
	"sync"
)

// Frames are captured every iteration at a fixed region size, so the backing
// buffers are recycled through a pool. The render loop owns a frame until it
// calls RecycleFrame after presenting it; frames never cross iterations.

var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns a reusable RGBA image with bounds (0,0)-(w,h). The
// returned Pix length exactly matches w*h*4, and Stride is w*4.
func acquireFrame(w, h int) *image.RGBA {
	rect := image.Rect(0, 0, w, h)
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// RecycleFrame returns the frame to the pool for potential reuse. The frame
// must no longer be accessed by the caller after invoking RecycleFrame.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
