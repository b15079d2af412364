// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// SessionReader loads the cookie session for a request. *session.Store
// implements it.
type SessionReader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// TokenParser verifies bearer tokens. *auth.Tokens implements it.
type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

// LoadSession resolves the caller's identity and stores it in the request
// context. The session cookie is checked first, then an
// "Authorization: Bearer" token. It does NOT enforce authentication.
func LoadSession(sessions SessionReader, tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := sessions.Get(r.Context(), r)
			if err != nil {
				// Treat as unauthenticated rather than failing the request.
				slog.Warn("session load failed", "error", err)
				data = nil
			}

			if data == nil {
				if token, ok := bearerToken(r); ok {
					if id, err := tokens.Parse(token); err == nil {
						data = &session.Data{UserID: id.UserID, Email: id.Email}
					}
				}
			}

			if data != nil {
				r = r.WithContext(WithSession(r.Context(), data))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AdminGate applies auth.Gate to every request, redirecting with 303 when
// the gate says so. Must be applied after LoadSession.
func AdminGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := auth.Gate(r.URL.Path, SessionFromCtx(r.Context()) != nil)
		if loc := decision.Location(); loc != "" {
			http.Redirect(w, r, loc, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIAuth answers 401 with a JSON error when no identity is loaded.
// Must be applied after LoadSession.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession returns a context carrying data, as LoadSession stores it.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
