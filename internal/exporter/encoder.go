// Package exporter writes selected admin rows in the supported download
// formats. Every format implements RowEncoder so callers never depend on the
// concrete output type.
package exporter

import (
	"context"
	"fmt"
	"io"
	"time"
)

// RowEncoder defines a common interface for the export formats (PDF, CSV, Excel, JSON).
type RowEncoder interface {
	// WriteHeader writes the column headers.
	// This should be called exactly once before any rows are written.
	WriteHeader(columns []string) error

	// WriteRow writes a single row of data.
	// The values slice length must match the headers length.
	WriteRow(values []any) error

	// Flush ensures all buffered data is written to the underlying writer.
	// The PDF encoder renders the whole document here.
	Flush() error

	// Error returns the first error that occurred during encoding, if any.
	Error() error

	// Close releases any resources held by the encoder.
	io.Closer
}

// Table is an in-memory result set: display headers plus raw row values.
type Table struct {
	Columns []string
	Rows    [][]any
}

// ExportResult contains stats about the export.
type ExportResult struct {
	RowsProcessed int64
	Duration      time.Duration
}

// WriteTable streams t through enc and flushes it. The context is checked
// between rows.
func WriteTable(ctx context.Context, enc RowEncoder, t Table) (*ExportResult, error) {
	start := time.Now()

	if err := enc.WriteHeader(t.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	var rowCount int64
	for _, row := range t.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := enc.WriteRow(row); err != nil {
			return nil, fmt.Errorf("row write failed: %w", err)
		}
		rowCount++
	}

	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}
	if err := enc.Error(); err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}

	return &ExportResult{
		RowsProcessed: rowCount,
		Duration:      time.Since(start),
	}, nil
}
