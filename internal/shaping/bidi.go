package shaping

import (
	"golang.org/x/text/unicode/bidi"
)

// Visual reorders a single line from logical to visual order using the
// implicit part of the Unicode bidirectional algorithm. Explicit embedding
// controls are treated as neutrals and bracket pairs are not matched.
func Visual(line string) string {
	in := []rune(line)
	if len(in) == 0 || !hasRTL(in) {
		return line
	}

	types := make([]bidi.Class, len(in))
	for i, r := range in {
		p, _ := bidi.LookupRune(r)
		types[i] = p.Class()
	}

	base := baseLevel(types)
	resolveWeak(types, base)
	resolveNeutral(types, base)
	levels := resolveImplicit(types, base)
	resetTrailing(in, levels, base)
	return string(reorder(in, levels))
}

func hasRTL(in []rune) bool {
	for _, r := range in {
		p, _ := bidi.LookupRune(r)
		if c := p.Class(); c == bidi.R || c == bidi.AL {
			return true
		}
	}
	return false
}

// baseLevel is 1 when the first strong character is right-to-left.
func baseLevel(types []bidi.Class) int {
	for _, c := range types {
		switch c {
		case bidi.L:
			return 0
		case bidi.R, bidi.AL:
			return 1
		}
	}
	return 0
}

func embeddingClass(level int) bidi.Class {
	if level%2 == 1 {
		return bidi.R
	}
	return bidi.L
}

func resolveWeak(t []bidi.Class, base int) {
	sos := embeddingClass(base)

	// W1: marks take the type of the previous character.
	for i, c := range t {
		if c == bidi.NSM {
			if i == 0 {
				t[i] = sos
			} else {
				t[i] = t[i-1]
			}
		}
	}

	// W2: European numbers after Arabic letters become Arabic numbers.
	last := sos
	for i, c := range t {
		switch c {
		case bidi.L, bidi.R, bidi.AL:
			last = c
		case bidi.EN:
			if last == bidi.AL {
				t[i] = bidi.AN
			}
		}
	}

	// W3
	for i, c := range t {
		if c == bidi.AL {
			t[i] = bidi.R
		}
	}

	// W4: a single separator between two numbers of the same kind.
	for i := 1; i+1 < len(t); i++ {
		prev, next := t[i-1], t[i+1]
		switch t[i] {
		case bidi.ES:
			if prev == bidi.EN && next == bidi.EN {
				t[i] = bidi.EN
			}
		case bidi.CS:
			if prev == next && (prev == bidi.EN || prev == bidi.AN) {
				t[i] = prev
			}
		}
	}

	// W5: terminators adjacent to European numbers.
	for i := 0; i < len(t); {
		if t[i] != bidi.ET {
			i++
			continue
		}
		end := i
		for end < len(t) && t[end] == bidi.ET {
			end++
		}
		if (i > 0 && t[i-1] == bidi.EN) || (end < len(t) && t[end] == bidi.EN) {
			for j := i; j < end; j++ {
				t[j] = bidi.EN
			}
		}
		i = end
	}

	// W6
	for i, c := range t {
		if c == bidi.ES || c == bidi.ET || c == bidi.CS {
			t[i] = bidi.ON
		}
	}

	// W7: European numbers in a left-to-right context are plain L.
	last = sos
	for i, c := range t {
		switch c {
		case bidi.L, bidi.R:
			last = c
		case bidi.EN:
			if last == bidi.L {
				t[i] = bidi.L
			}
		}
	}
}

func neutral(c bidi.Class) bool {
	switch c {
	case bidi.B, bidi.S, bidi.WS, bidi.ON, bidi.BN, bidi.Control,
		bidi.LRO, bidi.RLO, bidi.LRE, bidi.RLE, bidi.PDF,
		bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
		return true
	}
	return false
}

// strongOf treats numbers as right-to-left when resolving neutrals.
func strongOf(c bidi.Class) bidi.Class {
	if c == bidi.EN || c == bidi.AN {
		return bidi.R
	}
	return c
}

func resolveNeutral(t []bidi.Class, base int) {
	e := embeddingClass(base)
	for i := 0; i < len(t); {
		if !neutral(t[i]) {
			i++
			continue
		}
		end := i
		for end < len(t) && neutral(t[end]) {
			end++
		}
		before, after := e, e
		if i > 0 {
			before = strongOf(t[i-1])
		}
		if end < len(t) {
			after = strongOf(t[end])
		}
		resolved := e
		if before == after {
			resolved = before
		}
		for j := i; j < end; j++ {
			t[j] = resolved
		}
		i = end
	}
}

func resolveImplicit(t []bidi.Class, base int) []int {
	levels := make([]int, len(t))
	for i, c := range t {
		lvl := base
		if base%2 == 0 {
			switch c {
			case bidi.R:
				lvl++
			case bidi.AN, bidi.EN:
				lvl += 2
			}
		} else if c == bidi.L || c == bidi.EN || c == bidi.AN {
			lvl++
		}
		levels[i] = lvl
	}
	return levels
}

// resetTrailing puts trailing whitespace back on the paragraph level.
func resetTrailing(in []rune, levels []int, base int) {
	for i := len(in) - 1; i >= 0; i-- {
		p, _ := bidi.LookupRune(in[i])
		if c := p.Class(); c != bidi.WS && c != bidi.S && c != bidi.B {
			return
		}
		levels[i] = base
	}
}

// reorder mirrors brackets on odd levels and reverses every run at or above
// each level, from the highest level down to 1.
func reorder(in []rune, levels []int) []rune {
	out := make([]rune, len(in))
	top := 0
	for i, r := range in {
		out[i] = r
		if levels[i]%2 == 1 {
			if m := []rune(bidi.ReverseString(string(r))); len(m) == 1 {
				out[i] = m[0]
			}
		}
		top = max(top, levels[i])
	}

	lv := append([]int(nil), levels...)
	for level := top; level >= 1; level-- {
		for i := 0; i < len(out); {
			if lv[i] < level {
				i++
				continue
			}
			end := i
			for end < len(out) && lv[end] >= level {
				end++
			}
			for a, b := i, end-1; a < b; a, b = a+1, b-1 {
				out[a], out[b] = out[b], out[a]
				lv[a], lv[b] = lv[b], lv[a]
			}
			i = end
		}
	}
	return out
}
