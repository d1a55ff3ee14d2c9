package exporter

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Format names a download format.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatJSON  Format = "jsonl"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ContentType returns the MIME type sent with the download.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/x-ndjson"
	}
	return "application/octet-stream"
}

// Extension is the file name suffix, without the dot.
func (f Format) Extension() string { return string(f) }

// ParseFormat accepts the format names and the common aliases "excel" and "json".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "pdf":
		return FormatPDF, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "jsonl", "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// EmptyValue is shown in documents for missing values.
const EmptyValue = "-"

// TimeLayout formats time values in every format.
const TimeLayout = "2006-01-02 15:04:05"

// Display converts a value for human-readable output. Nil and empty values
// become EmptyValue.
func Display(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return EmptyValue
	case []byte:
		s = string(val)
	case string:
		s = val
	case time.Time:
		if val.IsZero() {
			return EmptyValue
		}
		s = val.Format(TimeLayout)
	case bool:
		if val {
			s = "True"
		} else {
			s = "False"
		}
	case int64:
		s = strconv.FormatInt(val, 10)
	case int:
		s = strconv.Itoa(val)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	if s == "" {
		return EmptyValue
	}
	return s
}

// guardFormula prefixes values that spreadsheet applications would evaluate.
func guardFormula(s string) string {
	if len(s) > 0 {
		first := s[0]
		if first == '=' || first == '+' || first == '-' || first == '@' {
			return "'" + s
		}
	}
	return s
}
