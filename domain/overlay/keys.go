package overlay

import "strings"

// ParseVK converts a key token (e.g. "Q", "F3", "ESC") into a Windows virtual-key code.
// Recognizes F1..F12, single letters A..Z, digits 0..9 and ESC/ESCAPE. Unknown tokens return 'Q'.
func ParseVK(key string) byte {
	k := strings.ToUpper(strings.TrimSpace(key))
	switch k {
	case "ESC", "ESCAPE":
		return 0x1B
	case "F10":
		return 0x79
	case "F11":
		return 0x7A
	case "F12":
		return 0x7B
	}
	if len(k) == 2 && k[0] == 'F' { // F1-F9
		n := int(k[1] - '0')
		if n >= 1 && n <= 9 {
			return byte(0x70 + (n - 1)) // VK_F1=0x70
		}
	}
	if len(k) == 1 && ((k[0] >= 'A' && k[0] <= 'Z') || (k[0] >= '0' && k[0] <= '9')) {
		return k[0] // match VK codes
	}
	return 'Q'
}
