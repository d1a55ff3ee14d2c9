package admin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-exporter/internal/driver"
	"pdf-exporter/internal/exporter"
	"pdf-exporter/internal/render"
	"pdf-exporter/internal/settings"
	"pdf-exporter/internal/storage"
)

type book struct {
	ID        int
	Title     string
	Author    string
	Published time.Time
}

var exportedAt = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func bookAdmin() *ModelAdmin[book] {
	return &ModelAdmin[book]{
		Model:       "Book",
		VerboseName: "books",
		ListDisplay: []string{"id", "title", "missing", "author_name", "published"},
		Fields: []Field[book]{
			{Name: "id", Label: "ID", Value: func(b book) any { return b.ID }},
			{Name: "title", Value: func(b book) any { return b.Title }},
			{Name: "author_name", Label: "author", Value: func(b book) any { return b.Author }},
			{Name: "published", Label: "date published", Value: func(b book) any { return b.Published }},
		},
	}
}

func books() []book {
	return []book{
		{ID: 1, Title: "Dune", Author: "Herbert", Published: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Title: "Emma"},
	}
}

type failingProvider struct{}

func (failingProvider) Active(context.Context) (*settings.ExportConfiguration, error) {
	return nil, errors.New("database is down")
}

func newExporter(t *testing.T, p settings.Provider) *Exporter {
	t.Helper()
	return &Exporter{
		Settings: p,
		Renderer: &render.Renderer{Fonts: render.NewFontRegistry(t.TempDir())},
		Now:      func() time.Time { return exportedAt },
	}
}

func TestColumnsDropUnknownFields(t *testing.T) {
	cols := bookAdmin().Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "title", "author_name", "published"}, names)
}

func TestFieldHeader(t *testing.T) {
	assert.Equal(t, "Author", Field[book]{Name: "author_name", Label: "author"}.Header())
	assert.Equal(t, "Author name", Field[book]{Name: "author_name"}.Header())
	assert.Equal(t, "Date published", Field[book]{Name: "published", Label: "date published"}.Header())
	assert.Equal(t, "Étage", Field[book]{Name: "étage"}.Header())
	assert.Equal(t, "", Field[book]{}.Header())
}

func TestTable(t *testing.T) {
	tbl := bookAdmin().Table(books())
	assert.Equal(t, []string{"ID", "Title", "Author", "Date published"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []any{2, "Emma", "", time.Time{}}, tbl.Rows[1])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Book_export_2024-03-09_14-05-07.pdf", Filename("Book", exportedAt, exporter.FormatPDF))
	assert.Equal(t, "Book_export_2024-03-09_14-05-07.xlsx", Filename("Book", exportedAt, exporter.FormatExcel))
}

func TestExportPDFWithDefaults(t *testing.T) {
	e := newExporter(t, settings.Static{})
	for _, act := range []Action[book]{ExportToPDFPortrait[book](e), ExportToPDFLandscape[book](e)} {
		doc, err := act(context.Background(), bookAdmin(), books())
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.Equal(t, "Book_export_2024-03-09_14-05-07.pdf", doc.Filename)
		assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF-")))
	}
}

func TestExportSettingsFailureFallsBack(t *testing.T) {
	e := newExporter(t, failingProvider{})
	job := NewJob(context.Background(), e, bookAdmin(), books(), settings.Landscape)
	assert.False(t, job.Settings.Configured)
	assert.Equal(t, settings.FallbackLandscapeItems, job.Settings.ItemsPerPage)
	assert.Equal(t, exportedAt, job.ExportedAt)

	doc, err := ExportToPDFPortrait[book](e)(context.Background(), bookAdmin(), books())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Body)
}

func TestExportUsesActiveSettings(t *testing.T) {
	cfg := settings.New("Reports")
	cfg.Active = true
	cfg.ItemsPerPage = 1
	e := newExporter(t, settings.Static{Config: cfg})

	job := NewJob(context.Background(), e, bookAdmin(), books(), settings.Portrait)
	assert.True(t, job.Settings.Configured)
	assert.Equal(t, 1, job.Settings.ItemsPerPage)

	doc, err := ExportToPDFPortrait[book](e)(context.Background(), bookAdmin(), books())
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "/Count 2\n")
}

func TestExportCSVAndJSON(t *testing.T) {
	e := newExporter(t, nil)

	doc, err := ExportToCSV[book](e)(context.Background(), bookAdmin(), books())
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
	lines := strings.Split(strings.TrimSpace(string(doc.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Title,Author,Date published", lines[0])

	doc, err = ExportToJSON[book](e)(context.Background(), bookAdmin(), books())
	require.NoError(t, err)
	assert.Equal(t, "Book_export_2024-03-09_14-05-07.jsonl", doc.Filename)
	assert.Contains(t, string(doc.Body), `"Title":"Dune"`)
}

func TestExportExcel(t *testing.T) {
	doc, err := ExportToExcel[book](newExporter(t, nil))(context.Background(), bookAdmin(), books())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("PK")))
}

func TestExportArchivesCopy(t *testing.T) {
	archive := storage.NewLocalProvider(t.TempDir())
	e := newExporter(t, nil)
	e.Archive = archive

	doc, err := ExportToCSV[book](e)(context.Background(), bookAdmin(), books())
	require.NoError(t, err)

	rc, err := archive.OpenFile(context.Background(), ArchivePrefix+doc.Filename)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, doc.Body, stored)
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExportToPDFPortrait[book](newExporter(t, nil))(ctx, bookAdmin(), books())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	doc := &Document{Filename: "Book_export_2024-03-09_14-05-07.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}
	require.NoError(t, WriteAttachment(rec, doc))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Book_export_2024-03-09_14-05-07.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

const modelsYAML = `
models:
  - name: Book
    verbose_name: books
    source: books
    key: id
    fields: [id, title, author]
    list_display: [id, title, author, rating]
    labels:
      author: written by
  - name: Author
    source: library.authors
    key: id
    list_display: [id, name]
`

func TestLoadModels(t *testing.T) {
	models, err := LoadModels(strings.NewReader(modelsYAML))
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "library.authors", models[1].Source)

	m := models[0].Admin()
	headers := []string{}
	for _, c := range m.Columns() {
		headers = append(headers, c.Header())
	}
	assert.Equal(t, []string{"Id", "Title", "Written by"}, headers)

	_, err = LoadModels(strings.NewReader("models:\n  - nam: x\n"))
	assert.Error(t, err)

	empty, err := LoadModels(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type fakeDriver struct {
	rows []driver.Record
	sel  driver.Selection
}

func (d *fakeDriver) Name() string { return "fake" }
func (d *fakeDriver) Ping(ctx context.Context) error { return nil }
func (d *fakeDriver) Close() error { return nil }
func (d *fakeDriver) Fetch(ctx context.Context, sel driver.Selection) ([]driver.Record, error) {
	d.sel = sel
	return d.rows, nil
}

func TestSiteRun(t *testing.T) {
	d := &fakeDriver{rows: []driver.Record{
		{"id": int64(1), "title": "Dune", "author": nil},
		{"id": int64(2), "title": "Emma", "author": "Austen"},
	}}
	site := NewSite(d, newExporter(t, nil))
	models, err := LoadModels(strings.NewReader(modelsYAML))
	require.NoError(t, err)
	for _, m := range models {
		require.NoError(t, site.Register(m))
	}
	assert.Error(t, site.Register(models[0]))

	doc, err := site.Run(context.Background(), "Book", ActionCSV, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, driver.Selection{Source: "books", Key: "id", IDs: []string{"1", "2"}}, d.sel)
	assert.Equal(t, "Id,Title,Written by\n1,Dune,\n2,Emma,Austen\n", string(doc.Body))

	_, err = site.Run(context.Background(), "Shelf", ActionCSV, []string{"1"})
	assert.ErrorIs(t, err, ErrUnknownModel)
	_, err = site.Run(context.Background(), "Book", "delete_selected", []string{"1"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = site.Run(context.Background(), "Book", ActionCSV, nil)
	assert.ErrorIs(t, err, ErrNoSelection)

	infos := site.Models()
	require.Len(t, infos, 2)
	assert.Equal(t, "Author", infos[0].Name)
	assert.Equal(t, "Books", infos[1].VerboseName)
	assert.Contains(t, infos[1].Actions, ActionPDFLandscape)
}

func TestSiteRejectsUnsafeSource(t *testing.T) {
	site := NewSite(&fakeDriver{}, newExporter(t, nil))
	err := site.Register(ModelConfig{Name: "Evil", Source: "books; DROP TABLE x", Key: "id"})
	assert.Error(t, err)
}
