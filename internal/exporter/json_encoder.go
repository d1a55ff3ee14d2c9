package exporter

import (
	"encoding/json"
	"io"
	"strconv"
)

// JSONEncoder implements RowEncoder for JSON Lines: one object per row,
// keyed by column header.
type JSONEncoder struct {
	enc     *json.Encoder
	columns []string
	err     error
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONEncoder{enc: enc}
}

// WriteHeader captures the column names to be used as JSON keys. A repeated
// name gets the column's position appended so no value is dropped.
func (e *JSONEncoder) WriteHeader(columns []string) error {
	e.columns = uniqueKeys(columns, len(columns))
	return nil
}

func uniqueKeys(columns []string, n int) []string {
	keys := make([]string, n)
	seen := make(map[string]bool, n)
	for i := range keys {
		base := "column_" + strconv.Itoa(i+1)
		if i < len(columns) {
			base = columns[i]
		}
		key := base
		for suffix := i + 1; seen[key]; suffix++ {
			key = base + "_" + strconv.Itoa(suffix)
		}
		seen[key] = true
		keys[i] = key
	}
	return keys
}

func (e *JSONEncoder) WriteRow(values []any) error {
	if e.err != nil {
		return e.err
	}

	if len(values) > len(e.columns) {
		e.columns = uniqueKeys(e.columns, len(values))
	}

	row := make(map[string]any, len(values))
	for i, v := range values {
		key := e.columns[i]
		if b, ok := v.([]byte); ok {
			row[key] = string(b)
		} else {
			row[key] = v
		}
	}

	// Encode appends the newline.
	if err := e.enc.Encode(row); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *JSONEncoder) Flush() error {
	return e.err
}

func (e *JSONEncoder) Error() error {
	return e.err
}

func (e *JSONEncoder) Close() error {
	return e.Flush()
}
