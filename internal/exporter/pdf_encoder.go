package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pdf-exporter/internal/render"
)

var errEncoderClosed = errors.New("encoder closed")

// PDFEncoder implements RowEncoder for PDF documents. A table layout needs
// every row to size its columns, so rows are buffered and the document is
// rendered on Flush. Close without Flush discards the rows.
type PDFEncoder struct {
	ctx     context.Context
	w       io.Writer
	r       *render.Renderer
	doc     render.Document
	flushed bool
	closed  bool
	err     error
}

// NewPDFEncoder creates a PDF encoder. doc carries the title, settings and
// export time; its header and rows are filled by the encoder.
func NewPDFEncoder(ctx context.Context, w io.Writer, r *render.Renderer, doc render.Document) *PDFEncoder {
	doc.Header = nil
	doc.Rows = nil
	return &PDFEncoder{ctx: ctx, w: w, r: r, doc: doc}
}

func (e *PDFEncoder) WriteHeader(columns []string) error {
	if e.err != nil {
		return e.err
	}
	e.doc.Header = append([]string(nil), columns...)
	return nil
}

func (e *PDFEncoder) WriteRow(values []any) error {
	if e.err != nil {
		return e.err
	}
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = Display(v)
	}
	e.doc.Rows = append(e.doc.Rows, row)
	return nil
}

// Flush renders the document and writes it to the underlying writer. Only
// the first call renders.
func (e *PDFEncoder) Flush() error {
	if e.err != nil || e.flushed {
		return e.err
	}
	if e.closed {
		return errEncoderClosed
	}
	e.flushed = true

	out, err := e.r.Render(e.ctx, e.doc)
	if err != nil {
		e.err = fmt.Errorf("render pdf: %w", err)
		return e.err
	}
	if _, err := e.w.Write(out); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *PDFEncoder) Error() error {
	return e.err
}

func (e *PDFEncoder) Close() error {
	e.closed = true
	e.doc.Rows = nil
	return nil
}
