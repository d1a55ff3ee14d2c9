package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const excelMaxRows = 1048576

// ExcelOptions styles the workbook the way the PDF export is styled.
type ExcelOptions struct {
	SheetName   string
	Title       string
	HeaderFill  string // #RRGGBB
	GridColor   string // #RRGGBB
	RightToLeft bool
}

// ExcelEncoder implements RowEncoder for Excel (.xlsx) files using
// excelize.StreamWriter.
type ExcelEncoder struct {
	f            *excelize.File
	sw           *excelize.StreamWriter
	w            io.Writer
	opts         ExcelOptions
	rowIdx       int
	headerStyle  int
	err          error
	headerLength int
}

func NewExcelEncoder(w io.Writer, opts ExcelOptions) *ExcelEncoder {
	if opts.SheetName == "" {
		opts.SheetName = "Sheet1"
	}
	e := &ExcelEncoder{w: w, opts: opts, rowIdx: 1}

	f := excelize.NewFile()
	e.f = f
	if opts.SheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", opts.SheetName); err != nil {
			e.err = err
			return e
		}
	}
	if opts.Title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: opts.Title, Creator: "pdf-exporter"}); err != nil {
			e.err = err
			return e
		}
	}
	if opts.RightToLeft {
		rtl := true
		if err := f.SetSheetView(opts.SheetName, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			e.err = err
			return e
		}
	}

	style, err := f.NewStyle(headerStyle(opts))
	if err != nil {
		e.err = err
		return e
	}
	e.headerStyle = style

	sw, err := f.NewStreamWriter(opts.SheetName)
	if err != nil {
		e.err = err
		return e
	}
	e.sw = sw
	return e
}

func headerStyle(opts ExcelOptions) *excelize.Style {
	st := &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
	if fill := strings.TrimPrefix(opts.HeaderFill, "#"); fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}}
	}
	if grid := strings.TrimPrefix(opts.GridColor, "#"); grid != "" {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: grid, Style: 1})
		}
	}
	return st
}

func (e *ExcelEncoder) WriteHeader(columns []string) error {
	if e.err != nil {
		return e.err
	}

	e.headerLength = len(columns)
	// Column widths must be set before the first row is streamed.
	for i, col := range columns {
		width := float64(max(utf8.RuneCountInString(col)+4, 10))
		if err := e.sw.SetColWidth(i+1, i+1, width); err != nil {
			e.err = err
			return err
		}
	}
	if err := e.sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		e.err = err
		return err
	}

	row := make([]any, len(columns))
	for i, col := range columns {
		row[i] = excelize.Cell{StyleID: e.headerStyle, Value: col}
	}
	return e.setRow(row)
}

func (e *ExcelEncoder) WriteRow(values []any) error {
	if e.err != nil {
		return e.err
	}

	row := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case []byte:
			row[i] = guardFormula(string(val))
		case string:
			row[i] = guardFormula(val)
		case nil:
			row[i] = nil
		case time.Time:
			row[i] = val
		case fmt.Stringer:
			row[i] = guardFormula(val.String())
		default:
			// Numbers, booleans and times are typed natively by excelize.
			row[i] = v
		}
	}
	return e.setRow(row)
}

func (e *ExcelEncoder) setRow(row []any) error {
	if e.rowIdx > excelMaxRows {
		e.err = fmt.Errorf("excel row limit exceeded (%d rows)", excelMaxRows)
		return e.err
	}
	cell, err := excelize.CoordinatesToCellName(1, e.rowIdx)
	if err != nil {
		e.err = err
		return err
	}
	if err := e.sw.SetRow(cell, row); err != nil {
		e.err = err
		return err
	}
	e.rowIdx++
	return nil
}

func (e *ExcelEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.sw.Flush(); err != nil {
		e.err = err
		return err
	}
	if err := e.f.Write(e.w); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *ExcelEncoder) Error() error {
	return e.err
}

func (e *ExcelEncoder) Close() error {
	if e.f != nil {
		return e.f.Close()
	}
	return nil
}
