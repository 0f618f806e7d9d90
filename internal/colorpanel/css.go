package colorpanel

import "strings"

// CSS normalizes a color to a CSS color string.
//
// Bare hex digits of length 3, 4, 6 or 8 gain a leading '#' and hex colors
// are lowercased. Named colors and functional notation such as rgb(...) are
// returned trimmed but otherwise unchanged.
func CSS(color string) string {
	c := strings.TrimSpace(color)
	if c == "" {
		return ""
	}

	hex := strings.TrimPrefix(c, "#")
	if isHex(hex) {
		switch len(hex) {
		case 3, 4, 6, 8:
			return "#" + strings.ToLower(hex)
		}
	}
	return c
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
