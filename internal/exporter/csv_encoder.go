package exporter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVEncoder wraps encoding/csv with type-aware conversion and a formula
// injection guard.
type CSVEncoder struct {
	w       *csv.Writer
	buf     *bufio.Writer
	columns []string
}

// NewCSVEncoder creates a new CSV encoder that writes to the provided io.Writer.
func NewCSVEncoder(w io.Writer) *CSVEncoder {
	buf := bufio.NewWriterSize(w, 64*1024)
	return &CSVEncoder{
		w:   csv.NewWriter(buf),
		buf: buf,
	}
}

// WriteHeader writes the CSV header row.
func (e *CSVEncoder) WriteHeader(columns []string) error {
	e.columns = columns
	record := make([]string, len(columns))
	for i, c := range columns {
		record[i] = guardFormula(c)
	}
	return e.w.Write(record)
}

func (e *CSVEncoder) WriteRow(values []any) error {
	record := make([]string, len(values))
	for i, v := range values {
		record[i] = toString(v)
	}
	return e.w.Write(record)
}

// Flush ensures all data is written to the underlying writer.
func (e *CSVEncoder) Flush() error {
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return err
	}
	return e.buf.Flush()
}

func (e *CSVEncoder) Error() error {
	return e.w.Error()
}

func (e *CSVEncoder) Close() error {
	return e.Flush()
}

// toString converts machine-readable values; nil becomes an empty field.
func toString(val any) string {
	var s string
	switch v := val.(type) {
	case nil:
		return ""
	case []byte:
		s = string(v)
	case string:
		s = v
	case time.Time:
		s = v.Format(TimeLayout)
	case int64:
		s = strconv.FormatInt(v, 10)
	case int:
		s = strconv.Itoa(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			s = "1"
		} else {
			s = "0"
		}
	default:
		s = fmt.Sprint(v)
	}
	return guardFormula(s)
}
