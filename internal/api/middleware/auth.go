package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"pdf-exporter/internal/security"
)

// maxSignedBody bounds the body read for HMAC verification.
const maxSignedBody = 1 << 20

type contextKey struct{}

// Identity describes the authenticated caller.
type Identity struct {
	Username string
	// Service is set for HMAC-signed requests.
	Service bool
}

// FromContext returns the caller attached by StaffOnly.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	http.Error(w, msg, http.StatusUnauthorized)
}

// StaffOnly admits staff bearer tokens signed with jwtSecret and requests
// signed with apiSecret. With both secrets empty every request is admitted
// (development mode).
func StaffOnly(apiSecret, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiSecret == "" && jwtSecret == "" {
				next.ServeHTTP(w, r)
				return
			}

			if auth := r.Header.Get("Authorization"); jwtSecret != "" && strings.HasPrefix(auth, "Bearer ") {
				claims, err := security.ParseToken(jwtSecret, strings.TrimPrefix(auth, "Bearer "))
				if err != nil {
					unauthorized(w, "Invalid token")
					return
				}
				if !claims.Staff {
					http.Error(w, "Staff access required", http.StatusForbidden)
					return
				}
				ctx := context.WithValue(r.Context(), contextKey{}, Identity{Username: claims.Username})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			signature := r.Header.Get("X-Signature")
			if apiSecret == "" || signature == "" {
				unauthorized(w, "Authentication required")
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBody))
			if err != nil {
				http.Error(w, "Failed to read body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			err = security.VerifyHMAC(apiSecret, r.Method, r.URL.Path, string(body), r.Header.Get("X-Timestamp"), signature)
			if err != nil {
				if errors.Is(err, security.ErrRequestExpired) {
					slog.Warn("Expired signed request", "path", r.URL.Path)
				}
				unauthorized(w, "Invalid signature")
				return
			}
			ctx := context.WithValue(r.Context(), contextKey{}, Identity{Username: "service", Service: true})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
