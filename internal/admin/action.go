package admin

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pdf-exporter/internal/exporter"
	"pdf-exporter/internal/render"
	"pdf-exporter/internal/settings"
	"pdf-exporter/internal/storage"
)

// FilenameLayout is the timestamp layout used in export filenames.
const FilenameLayout = "2006-01-02_15-04-05"

// ArchivePrefix is the storage prefix for archived exports.
const ArchivePrefix = "exports/"

// Action names as registered on every model.
const (
	ActionPDFPortrait  = "export_to_pdf_portrait"
	ActionPDFLandscape = "export_to_pdf_landscape"
	ActionCSV          = "export_to_csv"
	ActionExcel        = "export_to_excel"
	ActionJSON         = "export_to_json"
)

// Document is a generated download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Action exports the selected rows of a model.
type Action[T any] func(ctx context.Context, m *ModelAdmin[T], rows []T) (*Document, error)

// Job is the state of one export after settings resolution.
type Job struct {
	Table      exporter.Table
	Settings   settings.Effective
	ExportedAt time.Time
}

// Exporter runs export actions. Settings is read once per export; Archive,
// when set, receives a copy of every generated document.
type Exporter struct {
	Settings settings.Provider
	Renderer *render.Renderer
	Archive  storage.Provider
	Now      func() time.Time
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// resolve fetches the active configuration. Provider failures are logged and
// the export continues with fallback values.
func (e *Exporter) resolve(ctx context.Context, o settings.Orientation) settings.Effective {
	if e.Settings == nil {
		return settings.Resolve(nil, o)
	}
	cfg, err := e.Settings.Active(ctx)
	if err != nil {
		slog.Warn("Export settings unavailable, using defaults", "error", err)
		cfg = nil
	}
	return settings.Resolve(cfg, o)
}

// NewJob snapshots settings, columns and the export time for rows.
func NewJob[T any](ctx context.Context, e *Exporter, m *ModelAdmin[T], rows []T, o settings.Orientation) Job {
	return Job{
		Table:      m.Table(rows),
		Settings:   e.resolve(ctx, o),
		ExportedAt: e.now(),
	}
}

// Filename builds "<Model>_export_<timestamp>.<ext>".
func Filename(model string, at time.Time, f exporter.Format) string {
	return model + "_export_" + at.Format(FilenameLayout) + "." + f.Extension()
}

// Export encodes rows of m in format f.
func Export[T any](ctx context.Context, e *Exporter, m *ModelAdmin[T], rows []T, f exporter.Format, o settings.Orientation) (*Document, error) {
	job := NewJob(ctx, e, m, rows, o)

	var buf bytes.Buffer
	var enc exporter.RowEncoder
	switch f {
	case exporter.FormatPDF:
		r := e.Renderer
		if r == nil {
			r = &render.Renderer{}
		}
		enc = exporter.NewPDFEncoder(ctx, &buf, r, render.Document{
			Title:      m.Title(),
			Settings:   job.Settings,
			ExportedAt: job.ExportedAt,
		})
	case exporter.FormatCSV:
		enc = exporter.NewCSVEncoder(&buf)
	case exporter.FormatExcel:
		enc = exporter.NewExcelEncoder(&buf, exporter.ExcelOptions{
			SheetName:   m.Model,
			Title:       m.Title(),
			HeaderFill:  job.Settings.HeaderBackgroundColor,
			GridColor:   job.Settings.GridLineColor,
			RightToLeft: job.Settings.RTLSupport,
		})
	case exporter.FormatJSON:
		enc = exporter.NewJSONEncoder(&buf)
	default:
		return nil, fmt.Errorf("%w: %s", exporter.ErrUnknownFormat, f)
	}
	defer enc.Close()

	res, err := exporter.WriteTable(ctx, enc, job.Table)
	if err != nil {
		return nil, fmt.Errorf("export %s as %s: %w", m.Model, f, err)
	}

	doc := &Document{
		Filename:    Filename(m.Model, job.ExportedAt, f),
		ContentType: f.ContentType(),
		Body:        buf.Bytes(),
	}
	slog.Info("Export complete",
		"model", m.Model,
		"format", f,
		"orientation", job.Settings.Orientation,
		"rows", res.RowsProcessed,
		"bytes", len(doc.Body),
		"duration", res.Duration)

	e.archive(ctx, doc)
	return doc, nil
}

// archive failures never fail the download.
func (e *Exporter) archive(ctx context.Context, doc *Document) {
	if e.Archive == nil {
		return
	}
	key := ArchivePrefix + doc.Filename
	if err := storage.Save(ctx, e.Archive, key, bytes.NewReader(doc.Body)); err != nil {
		slog.Error("Failed to archive export", "key", key, "error", err)
		return
	}
	slog.Debug("Export archived", "key", key)
}

func ExportToPDFPortrait[T any](e *Exporter) Action[T] {
	return func(ctx context.Context, m *ModelAdmin[T], rows []T) (*Document, error) {
		return Export(ctx, e, m, rows, exporter.FormatPDF, settings.Portrait)
	}
}

func ExportToPDFLandscape[T any](e *Exporter) Action[T] {
	return func(ctx context.Context, m *ModelAdmin[T], rows []T) (*Document, error) {
		return Export(ctx, e, m, rows, exporter.FormatPDF, settings.Landscape)
	}
}

func ExportToCSV[T any](e *Exporter) Action[T] {
	return func(ctx context.Context, m *ModelAdmin[T], rows []T) (*Document, error) {
		return Export(ctx, e, m, rows, exporter.FormatCSV, settings.Portrait)
	}
}

func ExportToExcel[T any](e *Exporter) Action[T] {
	return func(ctx context.Context, m *ModelAdmin[T], rows []T) (*Document, error) {
		return Export(ctx, e, m, rows, exporter.FormatExcel, settings.Portrait)
	}
}

func ExportToJSON[T any](e *Exporter) Action[T] {
	return func(ctx context.Context, m *ModelAdmin[T], rows []T) (*Document, error) {
		return Export(ctx, e, m, rows, exporter.FormatJSON, settings.Portrait)
	}
}

// DefaultActions returns the built-in actions keyed by action name.
func DefaultActions[T any](e *Exporter) map[string]Action[T] {
	return map[string]Action[T]{
		ActionPDFPortrait:  ExportToPDFPortrait[T](e),
		ActionPDFLandscape: ExportToPDFLandscape[T](e),
		ActionCSV:          ExportToCSV[T](e),
		ActionExcel:        ExportToExcel[T](e),
		ActionJSON:         ExportToJSON[T](e),
	}
}

// WriteAttachment sends doc as a file download.
func WriteAttachment(w http.ResponseWriter, doc *Document) error {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(doc.Body)
	return err
}
