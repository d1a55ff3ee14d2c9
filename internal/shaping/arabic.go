package shaping

import "github.com/01walid/goarabic"

const lam = 0x0644

// lamAlef maps the alef following a lam to the ligature's isolated and final
// forms. goarabic only knows two of the four ligatures, so the others are
// shaped as U+FEFB and swapped back afterwards.
var lamAlef = map[rune][2]rune{
	0x0622: {0xFEF5, 0xFEF6},
	0x0623: {0xFEF7, 0xFEF8},
	0x0625: {0xFEF9, 0xFEFA},
	0x0627: {0xFEFB, 0xFEFC},
}

// breaksAfter holds the letters goarabic would wrongly join to the next one.
var breaksAfter = map[rune]bool{
	0xFEFB: true,
	0xFEF7: true,
	0x0698: true,
}

// transparent reports harakat and other marks skipped when choosing a form.
func transparent(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670 || (r >= 0x06D6 && r <= 0x06ED)
}

// glyph is a base letter with the marks that follow it.
type glyph struct {
	base  rune
	alef  rune
	marks []rune
}

// Reshape replaces Arabic letters with their contextual presentation forms
// and merges lam-alef pairs into ligatures. Text order is left logical.
func Reshape(s string) string {
	in := []rune(s)
	var glyphs []glyph
	var leading []rune

	for i := 0; i < len(in); i++ {
		r := in[i]
		if transparent(r) {
			if len(glyphs) == 0 {
				leading = append(leading, r)
			} else {
				last := &glyphs[len(glyphs)-1]
				last.marks = append(last.marks, r)
			}
			continue
		}
		g := glyph{base: r}
		if r == lam {
			if n := neighbour(in, i, 1); n >= 0 {
				if _, ok := lamAlef[in[n]]; ok {
					g.alef = in[n]
					g.base = 0xFEFB
					if in[n] == 0x0623 {
						g.base = 0xFEF7
					}
					// marks between lam and alef stay with the ligature
					g.marks = append(g.marks, in[i+1:n]...)
					i = n
				}
			}
		}
		glyphs = append(glyphs, g)
	}

	out := make([]rune, 0, len(in))
	out = append(out, leading...)
	for start := 0; start < len(glyphs); {
		end := start + 1
		for end < len(glyphs) && !breaksAfter[glyphs[end-1].base] {
			end++
		}
		segment := make([]rune, 0, end-start)
		for _, g := range glyphs[start:end] {
			segment = append(segment, g.base)
		}
		shaped := []rune(goarabic.ToGlyph(string(segment)))
		for i, g := range glyphs[start:end] {
			out = append(out, ligature(shaped[i], g.alef))
			out = append(out, g.marks...)
		}
		start = end
	}
	return string(out)
}

// ligature restores the lam-alef variant shaped through its U+FEFB stand-in.
func ligature(shaped, alef rune) rune {
	if alef == 0 {
		return shaped
	}
	forms := lamAlef[alef]
	switch shaped {
	case 0xFEFC, 0xFEF8:
		return forms[1]
	default:
		return forms[0]
	}
}

// neighbour returns the index of the closest non-transparent rune in
// direction step, or -1.
func neighbour(in []rune, i, step int) int {
	for j := i + step; j >= 0 && j < len(in); j += step {
		if !transparent(in[j]) {
			return j
		}
	}
	return -1
}
