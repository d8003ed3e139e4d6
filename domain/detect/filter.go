package detect

// Filter keeps detections with Class == class and Confidence >= threshold.
//
// The threshold is deliberately allowed to sit just above zero; at that
// setting the confidence test passes for practically every row and only the
// class index narrows the result.
func Filter(dets []Detection, class int, threshold float64) []Detection {
	out := dets[:0:0]
	for _, d := range dets {
		if d.Class != class {
			continue
		}
		if float64(d.Confidence) < threshold {
			continue
		}
		out = append(out, d)
	}
	return out
}
