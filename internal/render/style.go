package render

import (
	"fmt"

	"pdf-exporter/internal/layout"
	"pdf-exporter/internal/settings"
)

// Table style operations, applied in order.
const (
	OpGrid           = "GRID"
	OpBackground     = "BACKGROUND"
	OpVAlign         = "VALIGN"
	OpPadding        = "PADDING"
	OpRowBackgrounds = "ROWBACKGROUNDS"
)

// Cell addresses a table cell by column and row. Negative values count from
// the end, so {-1, -1} is the last cell.
type Cell struct {
	Col, Row int
}

// Command is one styling instruction over the cell range From..To.
type Command struct {
	Op       string
	From, To Cell
	Colors   []layout.RGB
	Width    float64
	Value    string
}

// TableStyle is the resolved table appearance.
type TableStyle struct {
	Commands []Command

	HeaderFill layout.RGB
	GridColor  layout.RGB
	GridWidth  float64
	Padding    float64
	VAlign     string
	RowFills   []layout.RGB
}

// ParagraphStyle describes how text inside a cell or title is set.
type ParagraphStyle struct {
	Family  string
	Style   string
	Size    float64 // points
	Leading float64 // points
}

// LineHeight converts the leading to millimetres.
func (p ParagraphStyle) LineHeight() float64 {
	return p.Leading * 25.4 / 72
}

// Styles groups everything a page needs to draw the table.
type Styles struct {
	Table  TableStyle
	Header ParagraphStyle
	Body   ParagraphStyle
}

// WithFamily returns a copy using family for both paragraph styles.
func (s Styles) WithFamily(family string) Styles {
	s.Header.Family = family
	s.Body.Family = family
	return s
}

var (
	white     = layout.RGB{R: 1, G: 1, B: 1}
	zebraFill = layout.RGB{R: 0.97, G: 0.97, B: 0.97}
)

const leadingFactor = 1.2

// ResolveStyles builds table and paragraph styles from the effective
// settings. Malformed colors are returned as errors wrapping
// layout.ErrInvalidColor.
func ResolveStyles(eff settings.Effective) (Styles, error) {
	headerFill, err := layout.HexToRGB(eff.HeaderBackgroundColor)
	if err != nil {
		return Styles{}, fmt.Errorf("header background: %w", err)
	}
	grid, err := layout.HexToRGB(eff.GridLineColor)
	if err != nil {
		return Styles{}, fmt.Errorf("grid line color: %w", err)
	}

	rowFills := []layout.RGB{white, zebraFill}
	table := TableStyle{
		HeaderFill: headerFill,
		GridColor:  grid,
		GridWidth:  eff.GridLineWidth,
		Padding:    layout.CellPadding,
		VAlign:     "MIDDLE",
		RowFills:   rowFills,
		Commands: []Command{
			{Op: OpGrid, From: Cell{0, 0}, To: Cell{-1, -1}, Colors: []layout.RGB{grid}, Width: eff.GridLineWidth},
			{Op: OpBackground, From: Cell{0, 0}, To: Cell{-1, 0}, Colors: []layout.RGB{headerFill}},
			{Op: OpRowBackgrounds, From: Cell{0, 1}, To: Cell{-1, -1}, Colors: rowFills},
			{Op: OpVAlign, From: Cell{0, 0}, To: Cell{-1, -1}, Value: "MIDDLE"},
			{Op: OpPadding, From: Cell{0, 0}, To: Cell{-1, -1}, Width: layout.CellPadding},
		},
	}

	header := float64(eff.HeaderFontSize)
	body := float64(eff.BodyFontSize)
	return Styles{
		Table:  table,
		Header: ParagraphStyle{Family: eff.FontName, Style: "B", Size: header, Leading: header * leadingFactor},
		Body:   ParagraphStyle{Family: eff.FontName, Size: body, Leading: body * leadingFactor},
	}, nil
}
