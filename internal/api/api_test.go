package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-exporter/internal/admin"
	"pdf-exporter/internal/driver"
	"pdf-exporter/internal/render"
	"pdf-exporter/internal/security"
	"pdf-exporter/internal/settings"
	"pdf-exporter/internal/store"
)

const (
	apiSecret = "api-secret"
	jwtSecret = "jwt-secret"
)

type fixture struct {
	server *httptest.Server
	store  *store.Store
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	st, err := store.Open(ctx, "sqlite3", filepath.Join(dir, "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.InitSchema(ctx))
	require.NoError(t, st.CreateUser(ctx, "admin", "secret", true))
	require.NoError(t, st.CreateUser(ctx, "viewer", "secret", false))

	data := driver.NewSQLiteDriver(filepath.Join(dir, "data.db"))
	t.Cleanup(func() { _ = data.Close() })
	db, err := data.DB()
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT, author TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO books (id, title, author) VALUES (1, 'Dune', 'Herbert'), (2, 'Emma', NULL)`)
	require.NoError(t, err)

	exp := &admin.Exporter{
		Settings: st,
		Renderer: &render.Renderer{Fonts: render.NewFontRegistry(dir)},
	}
	site := admin.NewSite(data, exp)
	require.NoError(t, site.Register(admin.ModelConfig{
		Name:        "Book",
		Source:      "books",
		Key:         "id",
		ListDisplay: []string{"id", "title", "author"},
	}))

	h := NewHandler(site, st, st, opts)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &fixture{server: srv, store: st}
}

func (f *fixture) do(t *testing.T, method, path, contentType string, body []byte, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestExportActionOpenMode(t *testing.T) {
	f := newFixture(t, Options{MaxConcurrent: 2})

	resp := f.do(t, http.MethodPost, "/admin/Book/actions/"+admin.ActionPDFPortrait, "application/json", []byte(`{"ids":["1","2"]}`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="Book_export_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.pdf"$`, resp.Header.Get("Content-Disposition"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportActionFormSelection(t *testing.T) {
	f := newFixture(t, Options{})

	form := url.Values{"_selected_action": {"2"}}
	resp := f.do(t, http.MethodPost, "/admin/Book/actions/"+admin.ActionCSV,
		"application/x-www-form-urlencoded", []byte(form.Encode()), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Id,Title,Author\n2,Emma,\n", buf.String())
}

func TestExportActionErrors(t *testing.T) {
	f := newFixture(t, Options{})

	resp := f.do(t, http.MethodPost, "/admin/Shelf/actions/"+admin.ActionCSV, "application/json", []byte(`{"ids":["1"]}`), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/Book/actions/delete_selected", "application/json", []byte(`{"ids":["1"]}`), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/Book/actions/"+admin.ActionCSV, "application/json", []byte(`{"ids":[]}`), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/admin/Book/actions/"+admin.ActionCSV, "application/json", []byte(`{`), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListModels(t *testing.T) {
	f := newFixture(t, Options{})
	resp := f.do(t, http.MethodGet, "/admin/models", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var models []admin.ModelInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&models))
	require.Len(t, models, 1)
	assert.Equal(t, []string{"Id", "Title", "Author"}, models[0].Columns)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t, Options{APISecret: apiSecret, JWTSecret: jwtSecret, TokenTTL: time.Hour})

	resp := f.do(t, http.MethodGet, "/admin/models", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/admin/models", "", nil, http.Header{"Authorization": {"Bearer nope"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func login(t *testing.T, f *fixture, username string) *http.Response {
	t.Helper()
	body, err := json.Marshal(LoginRequest{Username: username, Password: "secret"})
	require.NoError(t, err)
	return f.do(t, http.MethodPost, "/auth/login", "application/json", body, nil)
}

func TestLoginAndBearerToken(t *testing.T) {
	f := newFixture(t, Options{JWTSecret: jwtSecret, TokenTTL: time.Hour})

	resp := login(t, f, "viewer")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	bad := f.do(t, http.MethodPost, "/auth/login", "application/json", []byte(`{"username":"admin","password":"x"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)

	resp = login(t, f, "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 3600, out.ExpiresIn)

	resp = f.do(t, http.MethodGet, "/admin/models", "", nil, http.Header{"Authorization": {"Bearer " + out.Token}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	viewerToken, err := security.IssueToken(jwtSecret, "viewer", false, time.Hour, time.Now())
	require.NoError(t, err)
	resp = f.do(t, http.MethodGet, "/admin/models", "", nil, http.Header{"Authorization": {"Bearer " + viewerToken}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSignedRequest(t *testing.T) {
	f := newFixture(t, Options{APISecret: apiSecret})

	path := "/admin/Book/actions/" + admin.ActionJSON
	body := `{"ids":["1"]}`
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	header := http.Header{
		"X-Timestamp": {ts},
		"X-Signature": {security.Sign(apiSecret, http.MethodPost, path, body, ts)},
	}
	resp := f.do(t, http.MethodPost, path, "application/json", []byte(body), header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	header.Set("X-Signature", strings.Repeat("0", 64))
	resp = f.do(t, http.MethodPost, path, "application/json", []byte(body), header)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignedRequestIgnoresQuerySelection(t *testing.T) {
	f := newFixture(t, Options{APISecret: apiSecret})

	path := "/admin/Book/actions/" + admin.ActionCSV
	body := url.Values{"_selected_action": {"2"}}.Encode()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	header := http.Header{
		"X-Timestamp": {ts},
		"X-Signature": {security.Sign(apiSecret, http.MethodPost, path, body, ts)},
	}
	resp := f.do(t, http.MethodPost, path+"?_selected_action=1", "application/x-www-form-urlencoded", []byte(body), header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Id,Title,Author\n2,Emma,\n", buf.String())
}

func TestQueryOnlySelectionIsEmpty(t *testing.T) {
	f := newFixture(t, Options{})

	resp := f.do(t, http.MethodPost, "/admin/Book/actions/"+admin.ActionCSV+"?_selected_action=1",
		"application/x-www-form-urlencoded", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsLifecycle(t *testing.T) {
	f := newFixture(t, Options{})

	resp := f.do(t, http.MethodPost, "/admin/pdf-settings", "application/json",
		[]byte(`{"title":"Reports","active":true,"items_per_page":5,"page_size":"Letter"}`), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created settings.ExportConfiguration
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, 10, created.HeaderFontSize)
	assert.Equal(t, settings.PageLetter, created.PageSize)

	resp = f.do(t, http.MethodPost, "/admin/pdf-settings", "application/json",
		[]byte(`{"title":"Second","active":true}`), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	active, err := f.store.Active(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Second", active.Title)

	id := strconv.FormatInt(created.ID, 10)
	resp = f.do(t, http.MethodPut, "/admin/pdf-settings/"+id, "application/json", []byte(`{"active":true}`), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	active, err = f.store.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Reports", active.Title)
	assert.Equal(t, 5, active.ItemsPerPage)

	resp = f.do(t, http.MethodGet, "/admin/pdf-settings", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []settings.ExportConfiguration
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)

	resp = f.do(t, http.MethodGet, "/admin/pdf-settings/999", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsValidationErrors(t *testing.T) {
	f := newFixture(t, Options{})

	resp := f.do(t, http.MethodPost, "/admin/pdf-settings", "application/json",
		[]byte(`{"title":"Bad","header_font_size":30,"grid_line_color":"red"}`), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Errors, "header_font_size")
	assert.Contains(t, out.Errors, "grid_line_color")

	resp = f.do(t, http.MethodPost, "/admin/pdf-settings", "application/json", []byte(`{"colour":"x"}`), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, Options{AllowedOrigins: []string{"https://admin.example"}})

	resp := f.do(t, http.MethodOptions, "/admin/models", "", nil, http.Header{"Origin": {"https://admin.example"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://admin.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
