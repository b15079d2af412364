// Package session keeps admin logins in Valkey. The browser holds only an
// opaque id in a cookie; the identity lives server-side under that id and
// expires after a period of inactivity.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "inkwell_session"

	// DefaultTTL is the idle lifetime of a session. Every successful Get
	// pushes the expiry forward by this much.
	DefaultTTL = 7 * 24 * time.Hour

	keyPrefix = "inkwell:session:"
)

// Data is the identity stored for a logged-in user.
type Data struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Store creates, resolves and destroys sessions.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewStore returns a Store on client. secure sets the Secure cookie flag
// and should be true whenever the site is served over TLS.
func NewStore(client *redis.Client, secure bool, opts ...Option) *Store {
	s := &Store{client: client, ttl: DefaultTTL, secure: secure}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists data under a fresh id and sets the session cookie.
// data.CreatedAt is stamped with the current time.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id := rand.Text()
	data.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(id), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, s.cookie(id, int(s.ttl.Seconds())))
	return id, nil
}

// Get resolves the request's session cookie. A missing cookie or an
// unknown or expired id yields (nil, nil).
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id := cookieValue(r)
	if id == "" {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, key(id), s.ttl).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}

	data := new(Data)
	if err := json.Unmarshal(payload, data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return data, nil
}

// Destroy deletes the session named by the request cookie, if any, and
// expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := cookieValue(r)
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	http.SetCookie(w, s.cookie("", -1))
	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func key(id string) string { return keyPrefix + id }
