package render

import (
	"github.com/go-pdf/fpdf"

	"pdf-exporter/internal/layout"
)

// table draws one page worth of rows; rows[0] is the header.
type table struct {
	pdf    *fpdf.Fpdf
	face   Face
	styles Styles
	widths []float64
	rtl    bool
}

func (t table) draw(rows [][]string, x, y float64) {
	if len(t.widths) == 0 {
		return
	}
	st := t.styles.Table
	pdf := t.pdf

	for i, row := range rows {
		ps, align := t.styles.Body, "L"
		fill := st.HeaderFill
		if i == 0 {
			ps, align = t.styles.Header, "C"
		} else {
			fill = st.RowFills[(i-1)%len(st.RowFills)]
			if t.rtl {
				align = "R"
			}
		}
		pdf.SetFont(ps.Family, ps.Style, ps.Size)
		lh := ps.LineHeight()

		cells := make([][]string, len(t.widths))
		lines := 1
		for c, w := range t.widths {
			var v string
			if c < len(row) {
				v = row[c]
			}
			cells[c] = t.fit(v, w-2*st.Padding)
			lines = max(lines, len(cells[c]))
		}
		h := float64(lines)*lh + 2*st.Padding

		cx := x
		for c, w := range t.widths {
			fr, fg, fb := fill.Bytes()
			pdf.SetFillColor(fr, fg, fb)
			gr, gg, gb := st.GridColor.Bytes()
			pdf.SetDrawColor(gr, gg, gb)
			pdf.SetLineWidth(st.GridWidth)
			pdf.Rect(cx, y, w, h, "FD")

			pdf.SetTextColor(0, 0, 0)
			ty := y + (h-float64(len(cells[c]))*lh)/2
			for _, line := range cells[c] {
				pdf.SetXY(cx, ty)
				pdf.CellFormat(w, lh, t.face.Translate(line), "", 0, align, false, 0, "")
				ty += lh
			}
			cx += w
		}
		y += h
	}
}

// fit splits v on line breaks and hard-breaks any line wider than width so
// text never spills out of its cell.
func (t table) fit(v string, width float64) []string {
	var out []string
	for _, line := range layout.Lines(v) {
		if width <= 0 || t.width(line) <= width {
			out = append(out, line)
			continue
		}
		var cur []rune
		for _, r := range line {
			next := append(cur, r)
			if len(cur) > 0 && t.width(string(next)) > width {
				out = append(out, string(cur))
				cur = []rune{r}
				continue
			}
			cur = next
		}
		out = append(out, string(cur))
	}
	return out
}

func (t table) width(s string) float64 {
	return t.pdf.GetStringWidth(t.face.Translate(s))
}
