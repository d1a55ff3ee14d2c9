// Package admin exposes registered models to export actions. A model lists
// its display columns and typed field accessors; actions turn a selection of
// rows into a downloadable document.
package admin

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pdf-exporter/internal/exporter"
)

// Field reads one column from a row of type T.
type Field[T any] struct {
	Name  string
	Label string
	Value func(T) any
}

// Header returns the column heading: the capitalised label when one is set,
// otherwise the field name with underscores replaced by spaces.
func (f Field[T]) Header() string {
	if f.Label != "" {
		return capfirst(f.Label)
	}
	return capfirst(strings.ReplaceAll(f.Name, "_", " "))
}

// ModelAdmin describes how a model is listed and exported.
type ModelAdmin[T any] struct {
	// Model is the type name used in export filenames.
	Model       string
	VerboseName string
	ListDisplay []string
	Fields      []Field[T]
}

// Title is the heading drawn on every PDF page.
func (m *ModelAdmin[T]) Title() string {
	if m.VerboseName != "" {
		return capfirst(m.VerboseName)
	}
	return m.Model
}

func (m *ModelAdmin[T]) field(name string) (Field[T], bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Columns returns the ListDisplay entries backed by a registered field, in
// ListDisplay order. Unknown names are dropped.
func (m *ModelAdmin[T]) Columns() []Field[T] {
	cols := make([]Field[T], 0, len(m.ListDisplay))
	for _, name := range m.ListDisplay {
		if f, ok := m.field(name); ok && f.Value != nil {
			cols = append(cols, f)
		}
	}
	return cols
}

// Table extracts the exported columns from rows.
func (m *ModelAdmin[T]) Table(rows []T) exporter.Table {
	cols := m.Columns()
	t := exporter.Table{
		Columns: make([]string, len(cols)),
		Rows:    make([][]any, 0, len(rows)),
	}
	for i, c := range cols {
		t.Columns[i] = c.Header()
	}
	for _, row := range rows {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = c.Value(row)
		}
		t.Rows = append(t.Rows, values)
	}
	return t
}

func capfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
