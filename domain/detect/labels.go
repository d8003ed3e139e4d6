package detect

import "strconv"

// VOCLabels is the MobileNet-SSD label table, index-addressed by class id.
var VOCLabels = [...]string{
	"background", "aeroplane", "bicycle", "bird", "boat",
	"bottle", "bus", "car", "cat", "chair", "cow",
	"diningtable", "dog", "horse", "motorbike", "person",
	"pottedplant", "sheep", "sofa", "train", "tvmonitor",
}

// PersonClass is the index of "person" in VOCLabels.
const PersonClass = 15

// LabelFor returns the label for class, or "class N" when out of range.
func LabelFor(class int) string {
	if class >= 0 && class < len(VOCLabels) {
		return VOCLabels[class]
	}
	return "class " + strconv.Itoa(class)
}
