package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/session"
)

// invalidCredentials is the single message shown for every rejected
// login, whichever check failed.
const invalidCredentials = "invalid email or password"

// CredentialVerifier checks a login attempt. *auth.Verifier implements it.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password, code string) (*auth.Identity, error)
}

// SessionManager creates and destroys cookie sessions. *session.Store
// implements it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// TokenIssuer issues bearer tokens. *auth.Tokens implements it.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

// Auth groups all authentication-related HTTP handlers: the admin login
// form and the JSON login, logout, session and token endpoints.
type Auth struct {
	renderer *render.Renderer
	sessions SessionManager
	verifier CredentialVerifier
	tokens   TokenIssuer
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions SessionManager, verifier CredentialVerifier, tokens TokenIssuer) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		verifier: verifier,
		tokens:   tokens,
	}
}

// credentials is the body of the JSON login and token endpoints.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// userView is the identity returned to API clients.
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginPage renders the login form. Signed-in users never reach it; the
// admin gate sends them to the dashboard.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign in",
		Data:  map[string]any{"Email": ""},
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	id, err := a.verifier.Verify(r.Context(), email, r.FormValue("password"), r.FormValue("code"))
	if err != nil {
		msg := invalidCredentials
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err)
			msg = unexpectedError
			status = http.StatusInternalServerError
		}
		a.renderer.PageStatus(w, r, status, "login", &render.PageData{
			Title: "Sign in",
			Data:  map[string]any{"Error": msg, "Email": email},
		})
		return
	}

	if err := a.startSession(w, r, id); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, auth.AdminHome, http.StatusSeeOther)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, auth.AdminLogin, http.StatusSeeOther)
}

// APILogin verifies credentials and starts a cookie session.
func (a *Auth) APILogin(w http.ResponseWriter, r *http.Request) {
	id, ok := a.verifyJSON(w, r)
	if !ok {
		return
	}
	if err := a.startSession(w, r, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": viewOf(id.UserID.String(), id.Email)})
}

// APILogout destroys the cookie session, if any.
func (a *Auth) APILogout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeMessage(w, "signed out")
}

// APISession reports the caller's identity, or 401.
func (a *Auth) APISession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, r, &apperr.UnauthorizedError{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": viewOf(sess.UserID.String(), sess.Email)})
}

// APIToken verifies credentials and issues a bearer token.
func (a *Auth) APIToken(w http.ResponseWriter, r *http.Request) {
	id, ok := a.verifyJSON(w, r)
	if !ok {
		return
	}
	token, expires, err := a.tokens.Issue(*id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "expiresAt": expires})
}

// verifyJSON decodes credentials and verifies them, writing the error
// response itself when verification does not succeed.
func (a *Auth) verifyJSON(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	id, err := a.verifier.Verify(r.Context(), c.Email, c.Password, c.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			err = &apperr.UnauthorizedError{Msg: invalidCredentials}
		}
		writeError(w, r, err)
		return nil, false
	}
	return id, true
}

// startSession replaces any session the request already carries with a
// fresh one for id.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, id *auth.Identity) error {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
		return err
	}
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID: id.UserID,
		Email:  id.Email,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		return err
	}
	slog.Info("user signed in", "user_id", id.UserID, "email", id.Email)
	return nil
}

func viewOf(id, email string) userView {
	return userView{ID: id, Email: email}
}
