package layout

import "strings"

// LineBreak separates wrapped chunks inside a cell.
const LineBreak = "\n"

// Wrap cuts s into chunks of exactly limit runes, the last one possibly shorter,
// and joins them with LineBreak. Word boundaries are ignored. Strings of at
// most limit runes, and any limit <= 0, leave s unchanged.
func Wrap(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for i := 0; i < len(runes); i += limit {
		end := min(i+limit, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return strings.Join(chunks, LineBreak)
}

// Lines splits a cell value on LineBreak.
func Lines(s string) []string {
	return strings.Split(s, LineBreak)
}
