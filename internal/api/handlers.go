// Package api serves the admin HTTP surface: login, model listing, export
// actions and the export settings edit boundary.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"pdf-exporter/internal/admin"
	"pdf-exporter/internal/api/middleware"
	"pdf-exporter/internal/security"
	"pdf-exporter/internal/settings"
	"pdf-exporter/internal/store"
)

// maxBodyBytes bounds JSON and form request bodies.
const maxBodyBytes = 1 << 20

// SettingsStore persists export settings.
type SettingsStore interface {
	SaveSettings(ctx context.Context, cfg *settings.ExportConfiguration) error
	GetSettings(ctx context.Context, id int64) (*settings.ExportConfiguration, error)
	ListSettings(ctx context.Context) ([]*settings.ExportConfiguration, error)
}

// Authenticator checks admin credentials.
type Authenticator interface {
	AuthenticateUser(ctx context.Context, username, password string) (*store.User, error)
}

type Options struct {
	Env            string
	AllowedOrigins []string
	APISecret      string
	JWTSecret      string
	TokenTTL       time.Duration
	ExportTimeout  time.Duration
	MaxConcurrent  int64
}

type Handler struct {
	Site     *admin.Site
	Settings SettingsStore
	Users    Authenticator

	opts Options
	sem  *semaphore.Weighted
	now  func() time.Time
}

func NewHandler(site *admin.Site, st SettingsStore, users Authenticator, opts Options) *Handler {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	return &Handler{
		Site:     site,
		Settings: st,
		Users:    users,
		opts:     opts,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
		now:      time.Now,
	}
}

// Routes returns the full handler chain.
func (h *Handler) Routes() http.Handler {
	staff := middleware.StaffOnly(h.opts.APISecret, h.opts.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", h.HandleLogin)
	mux.Handle("GET /admin/models", staff(http.HandlerFunc(h.HandleListModels)))
	mux.Handle("POST /admin/{model}/actions/{action}", staff(http.HandlerFunc(h.HandleAction)))
	mux.Handle("GET /admin/pdf-settings", staff(http.HandlerFunc(h.HandleListSettings)))
	mux.Handle("POST /admin/pdf-settings", staff(http.HandlerFunc(h.HandleCreateSettings)))
	mux.Handle("GET /admin/pdf-settings/{id}", staff(http.HandlerFunc(h.HandleGetSettings)))
	mux.Handle("PUT /admin/pdf-settings/{id}", staff(http.HandlerFunc(h.HandleUpdateSettings)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.CORS(h.opts.AllowedOrigins, h.opts.Env)(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// --- Auth Handlers ---

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Users == nil || h.opts.JWTSecret == "" {
		http.Error(w, "Token login is disabled", http.StatusNotFound)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Users.AuthenticateUser(r.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	} else if err != nil {
		slog.Error("Login failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !user.IsStaff {
		http.Error(w, "Staff access required", http.StatusForbidden)
		return
	}

	token, err := security.IssueToken(h.opts.JWTSecret, user.Username, user.IsStaff, h.opts.TokenTTL, h.now())
	if err != nil {
		slog.Error("Token signing failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(h.opts.TokenTTL.Seconds()),
	})
}

// --- Model Handlers ---

func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Site.Models())
}

type ActionRequest struct {
	IDs []string `json:"ids"`
}

// selectedIDs reads the selection from a JSON body or from the
// _selected_action form field used by admin change lists. Only the body is
// read: request signatures do not cover the query string.
func selectedIDs(w http.ResponseWriter, r *http.Request) ([]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return req.IDs, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm["_selected_action"], nil
}

func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	model, action := r.PathValue("model"), r.PathValue("action")
	log := slog.With("request_id", requestID, "model", model, "action", action)

	ids, err := selectedIDs(w, r)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.opts.ExportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.ExportTimeout)
		defer cancel()
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		log.Warn("Export slot not available", "error", err)
		http.Error(w, "Too many exports in progress", http.StatusServiceUnavailable)
		return
	}
	defer h.sem.Release(1)

	if caller, ok := middleware.FromContext(ctx); ok {
		log = log.With("user", caller.Username)
	}
	log.Info("Export requested", "selected", len(ids))

	doc, err := h.Site.Run(ctx, model, action, ids)
	switch {
	case errors.Is(err, admin.ErrUnknownModel), errors.Is(err, admin.ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, admin.ErrNoSelection):
		http.Error(w, "Items must be selected in order to perform actions on them", http.StatusBadRequest)
		return
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("Export timed out", "error", err)
		http.Error(w, "Export timed out", http.StatusGatewayTimeout)
		return
	case err != nil:
		log.Error("Export failed", "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	if err := admin.WriteAttachment(w, doc); err != nil {
		log.Warn("Client went away during download", "error", err)
	}
}

// --- Settings Handlers ---

func (h *Handler) HandleListSettings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Settings.ListSettings(r.Context())
	if err != nil {
		slog.Error("List settings failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*settings.ExportConfiguration{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	cfg, err := h.Settings.GetSettings(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	} else if err != nil {
		slog.Error("Get settings failed", "id", id, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) HandleCreateSettings(w http.ResponseWriter, r *http.Request) {
	cfg := settings.New("")
	if !decodeSettings(w, r, cfg) {
		return
	}
	cfg.ID = 0
	h.saveSettings(w, r, cfg, http.StatusCreated)
}

func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	cfg, err := h.Settings.GetSettings(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	} else if err != nil {
		slog.Error("Get settings failed", "id", id, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !decodeSettings(w, r, cfg) {
		return
	}
	cfg.ID = id
	h.saveSettings(w, r, cfg, http.StatusOK)
}

// decodeSettings overlays the JSON body on cfg, so omitted fields keep
// their current values.
func decodeSettings(w http.ResponseWriter, r *http.Request, cfg *settings.ExportConfiguration) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + strings.TrimPrefix(err.Error(), "json: ")})
		return false
	}
	cfg.PageSize = settings.PageSize(strings.TrimSpace(string(cfg.PageSize)))
	return true
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request, cfg *settings.ExportConfiguration, status int) {
	err := h.Settings.SaveSettings(r.Context(), cfg)
	var verr *settings.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Save settings failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	slog.Info("Export settings saved", "id", cfg.ID, "title", cfg.Title, "active", cfg.Active)
	writeJSON(w, status, cfg)
}
