package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/auth"
	"inkwell/internal/session"

	"github.com/google/uuid"
)

type fakeSessions struct {
	data *session.Data
	err  error
}

func (f fakeSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return f.data, f.err
}

type fakeTokens map[string]*auth.Identity

func (f fakeTokens) Parse(token string) (*auth.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidToken
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := &session.Data{UserID: uuid.New(), Email: "test@inkwell.local"}
		got := SessionFromCtx(WithSession(context.Background(), sess))
		if got != sess {
			t.Fatalf("got %+v, want %+v", got, sess)
		}
	})

	t.Run("returns nil when absent", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestLoadSession(t *testing.T) {
	cookieUser := &session.Data{UserID: uuid.New(), Email: "cookie@inkwell.local"}
	tokenUser := &auth.Identity{UserID: uuid.New(), Email: "token@inkwell.local"}
	tokens := fakeTokens{"good-token": tokenUser}

	tests := []struct {
		name      string
		sessions  fakeSessions
		header    string
		wantEmail string
	}{
		{"cookie session", fakeSessions{data: cookieUser}, "", cookieUser.Email},
		{"cookie wins over bearer", fakeSessions{data: cookieUser}, "Bearer good-token", cookieUser.Email},
		{"bearer token", fakeSessions{}, "Bearer good-token", tokenUser.Email},
		{"bearer scheme is case-insensitive", fakeSessions{}, "bearer good-token", tokenUser.Email},
		{"invalid bearer token", fakeSessions{}, "Bearer bad-token", ""},
		{"non-bearer scheme", fakeSessions{}, "Basic good-token", ""},
		{"empty bearer", fakeSessions{}, "Bearer ", ""},
		{"session store error falls back to bearer", fakeSessions{err: errors.New("valkey down")}, "Bearer good-token", tokenUser.Email},
		{"nothing", fakeSessions{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *session.Data
			handler := LoadSession(tt.sessions, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = SessionFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantEmail == "" {
				if got != nil {
					t.Errorf("expected no identity, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected identity, got nil")
			}
			if got.Email != tt.wantEmail {
				t.Errorf("Email: got %q, want %q", got.Email, tt.wantEmail)
			}
		})
	}
}

func TestAdminGate(t *testing.T) {
	authed := &session.Data{UserID: uuid.New(), Email: "admin@inkwell.local"}

	tests := []struct {
		name         string
		path         string
		session      *session.Data
		wantCalled   bool
		wantLocation string
	}{
		{"public page passes", "/blog", nil, true, ""},
		{"admin without session redirects to login", "/admin", nil, false, "/admin/login"},
		{"nested admin path without session", "/admin/anything", nil, false, "/admin/login"},
		{"login page without session passes", "/admin/login", nil, true, ""},
		{"admin with session passes", "/admin", authed, true, ""},
		{"login page with session redirects home", "/admin/login", authed, false, "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			handler := AdminGate(next)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.session != nil {
				req = req.WithContext(WithSession(req.Context(), tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantCalled {
				t.Errorf("called: got %v, want %v", *called, tt.wantCalled)
			}
			if tt.wantLocation != "" {
				if rr.Code != http.StatusSeeOther {
					t.Errorf("status: got %d, want 303", rr.Code)
				}
				if loc := rr.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location: got %q, want %q", loc, tt.wantLocation)
				}
			}
		})
	}
}

func TestRequireAPIAuth(t *testing.T) {
	t.Run("rejects anonymous with json 401", func(t *testing.T) {
		next, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAPIAuth(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/posts", nil))

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		if !strings.Contains(rr.Body.String(), `"error":"unauthorized"`) {
			t.Errorf("body: got %q", rr.Body.String())
		}
	})

	t.Run("passes authenticated", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req = req.WithContext(WithSession(req.Context(), &session.Data{UserID: uuid.New()}))
		rr := httptest.NewRecorder()
		RequireAPIAuth(next).ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should be called")
		}
	})
}
