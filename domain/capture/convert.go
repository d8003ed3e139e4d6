package capture

// BGRAToRGBA converts 32-bit BGRA pixels from src into RGBA in dst, forcing
// alpha opaque. It converts min(len(dst), len(src)) / 4 pixels.
func BGRAToRGBA(dst, src []byte) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	n -= n % 4
	for i := 0; i < n; i += 4 {
		b := src[i+0]
		g := src[i+1]
		r := src[i+2]
		// src[i+3] is undefined for screen DIBs
		dst[i+0] = r
		dst[i+1] = g
		dst[i+2] = b
		dst[i+3] = 0xFF
	}
}

// normalizeRGBA copies src into dst row by row, rebasing the origin to (0,0)
// and forcing alpha opaque. dst must be at least as large as src.
func normalizeRGBA(dst, src []byte, srcStride, dstStride, w, h int) {
	rowBytes := w * 4
	for y := 0; y < h; y++ {
		s := src[y*srcStride : y*srcStride+rowBytes]
		d := dst[y*dstStride : y*dstStride+rowBytes]
		copy(d, s)
		for i := 3; i < rowBytes; i += 4 {
			d[i] = 0xFF
		}
	}
}
