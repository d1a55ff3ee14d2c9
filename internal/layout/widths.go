package layout

// CellPadding is the horizontal padding applied on each side of a cell, in
// document units.
const CellPadding = 1.0

// MinNaturalWidth keeps empty columns from collapsing to zero.
const MinNaturalWidth = 2 * CellPadding

// Measurer reports the rendered width of a single line of text under the
// current font and size.
type Measurer interface {
	StringWidth(s string) float64
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(s string) float64

func (f MeasureFunc) StringWidth(s string) float64 { return f(s) }

// NaturalWidths returns, per column, the widest line of any cell plus padding.
// rows[0] is the header; the column count comes from it.
func NaturalWidths(rows [][]string, m Measurer) []float64 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	natural := make([]float64, len(rows[0]))
	for _, row := range rows {
		for i := 0; i < len(natural) && i < len(row); i++ {
			for _, line := range Lines(row[i]) {
				if w := m.StringWidth(line); w > natural[i] {
					natural[i] = w
				}
			}
		}
	}
	for i := range natural {
		natural[i] = max(natural[i]+2*CellPadding, MinNaturalWidth)
	}
	return natural
}

// ColumnWidths fits the natural column widths to exactly available.
//
// Each natural width is first capped at available, then every column is
// scaled by the same factor so the total equals available. Columns with equal
// natural widths therefore always get equal widths. The last column absorbs
// floating point residue.
func ColumnWidths(rows [][]string, available float64, m Measurer) []float64 {
	natural := NaturalWidths(rows, m)
	if len(natural) == 0 || available <= 0 {
		return nil
	}
	if len(natural) == 1 {
		return []float64{available}
	}

	var total float64
	for i, w := range natural {
		natural[i] = min(w, available)
		total += natural[i]
	}

	widths := make([]float64, len(natural))
	scale := available / total
	var used float64
	for i := 0; i < len(natural)-1; i++ {
		widths[i] = natural[i] * scale
		used += widths[i]
	}
	last := available - used
	if last <= 0 {
		// Only reachable through extreme float loss; fall back to the scaled value.
		last = natural[len(natural)-1] * scale
	}
	widths[len(widths)-1] = last
	return widths
}
