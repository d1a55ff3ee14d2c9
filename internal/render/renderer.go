// Package render draws paginated export tables into PDF documents with fpdf.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"pdf-exporter/internal/layout"
	"pdf-exporter/internal/settings"
	"pdf-exporter/internal/shaping"
	"pdf-exporter/internal/storage"
)

// Offsets in millimetres, measured from the page margin.
const (
	titleOffset  = 10.0
	tableOffset  = 18.0
	footerOffset = 5.0
	logoHeight   = 12.0
)

// ExportedAtLayout formats the footer timestamp.
const ExportedAtLayout = "2006-01-02 15:04:05"

// Document is one export ready for drawing. Header and Rows hold display
// strings; shaping and wrapping are applied by the renderer.
type Document struct {
	Title      string
	Header     []string
	Rows       [][]string
	Settings   settings.Effective
	ExportedAt time.Time
}

// Renderer turns a Document into PDF bytes. Fonts and Media are optional:
// without Fonts the core font is used, without Media no logo is drawn.
type Renderer struct {
	Fonts *FontRegistry
	Media storage.Provider
	Now   func() time.Time
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Render draws every page of doc. Any drawing failure aborts the whole
// document; partial output is never returned.
func (r *Renderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	eff := doc.Settings
	styles, err := ResolveStyles(eff)
	if err != nil {
		return nil, fmt.Errorf("resolve styles: %w", err)
	}

	exportedAt := doc.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = r.now()
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientationCode(eff.Orientation),
		UnitStr:        "mm",
		SizeStr:        string(eff.PageSize),
	})
	margin := eff.PageMarginMM
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(exportedAt)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCellMargin(styles.Table.Padding)

	face, err := r.Fonts.Apply(pdf, eff.FontName)
	if err != nil {
		return nil, err
	}
	styles = styles.WithFamily(face.Family)

	logo, err := r.loadLogo(ctx, pdf, eff)
	if err != nil {
		return nil, err
	}

	header := make([]string, len(doc.Header))
	for i, h := range doc.Header {
		header[i] = shaping.Shape(h, eff.RTLSupport)
	}
	data := make([][]string, len(doc.Rows))
	for i, row := range doc.Rows {
		cells := make([]string, len(header))
		for j := range cells {
			if j < len(row) {
				cells[j] = layout.Wrap(shaping.Shape(row[j], eff.RTLSupport), eff.MaxCharsPerLine)
			}
		}
		data[i] = cells
	}

	pageW, pageH := pdf.GetPageSize()
	available := pageW - 2*margin

	pdf.SetFont(styles.Body.Family, styles.Body.Style, styles.Body.Size)
	measure := layout.MeasureFunc(func(s string) float64 {
		return pdf.GetStringWidth(face.Translate(s))
	})
	widths := layout.ColumnWidths(append([][]string{header}, data...), available, measure)

	var tableWidth float64
	for _, w := range widths {
		tableWidth += w
	}
	tableX := (pageW - tableWidth) / 2

	title := face.Translate(shaping.Shape(doc.Title, eff.RTLSupport))
	stamp := "Exported at: " + exportedAt.Format(ExportedAtLayout)
	footerY := pageH - (margin + footerOffset)

	t := table{pdf: pdf, face: face, styles: styles, widths: widths, rtl: eff.RTLSupport}
	for _, page := range layout.Pages(header, data, eff.ItemsPerPage) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()

		if eff.ShowHeader {
			pdf.SetFont(styles.Header.Family, styles.Header.Style, styles.Header.Size)
			pdf.Text((pageW-pdf.GetStringWidth(title))/2, margin+titleOffset, title)
		}

		t.draw(page.Rows, tableX, margin+tableOffset)

		pdf.SetFont(styles.Body.Family, "", styles.Body.Size)
		pdf.SetTextColor(0, 0, 0)
		if eff.ShowExportTime {
			pdf.Text(margin, footerY, stamp)
		}
		if eff.ShowPageNumbers {
			num := fmt.Sprintf("%d / %d", page.Index+1, page.Total)
			pdf.Text(pageW-margin-pdf.GetStringWidth(num), footerY, num)
		}
		if logo != nil {
			pdf.ImageOptions(logo.name, pageW-margin-logo.width, margin, logo.width, logoHeight,
				false, fpdf.ImageOptions{ImageType: logo.kind}, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("draw pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	slog.Debug("PDF rendered", "title", doc.Title, "rows", len(doc.Rows), "pages", pdf.PageCount(), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func orientationCode(o settings.Orientation) string {
	if o == settings.Landscape {
		return "L"
	}
	return "P"
}

type logoImage struct {
	name  string
	kind  string
	width float64
}

// loadLogo registers the configured logo with pdf. A missing object or an
// unsupported format yields nil; any other storage error is returned.
func (r *Renderer) loadLogo(ctx context.Context, pdf *fpdf.Fpdf, eff settings.Effective) (*logoImage, error) {
	if !eff.ShowLogo || r.Media == nil || eff.LogoKey == "" {
		return nil, nil
	}

	kind := imageKind(eff.LogoKey)
	if kind == "" {
		slog.Warn("Unsupported logo format, skipping", "key", eff.LogoKey)
		return nil, nil
	}

	rc, err := r.Media.OpenFile(ctx, eff.LogoKey)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Debug("Logo not found, skipping", "key", eff.LogoKey)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open logo %s: %w", eff.LogoKey, err)
	}
	defer rc.Close()

	info := pdf.RegisterImageOptionsReader(eff.LogoKey, fpdf.ImageOptions{ImageType: kind, ReadDpi: true}, rc)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load logo %s: %w", eff.LogoKey, err)
	}
	w, h := info.Extent()
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	return &logoImage{name: eff.LogoKey, kind: kind, width: logoHeight * w / h}, nil
}

func imageKind(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	}
	return ""
}
