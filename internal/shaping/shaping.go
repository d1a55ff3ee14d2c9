// Package shaping prepares right-to-left text for PDF output. fpdf draws
// runes left to right exactly as given, so Arabic script has to be converted
// to presentation forms and put into visual order before it reaches a cell.
package shaping

import "strings"

// Shape returns text ready for drawing. With enabled false, or for empty
// input, text is returned unchanged. Each line is shaped on its own so cell
// line breaks survive.
func Shape(text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = Visual(Reshape(line))
	}
	return strings.Join(lines, "\n")
}
