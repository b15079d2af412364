// Package auth verifies admin credentials, issues and parses bearer tokens,
// and decides which admin paths an identity may reach.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

// ErrInvalidCredentials is the only rejection a caller ever sees. Unknown
// email, wrong password, and a missing or wrong second-factor code are
// indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is what a successful verification yields: who the caller is,
// and nothing else.
type Identity struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
}

// UserLookup finds users by email. Returns (nil, nil) when absent.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Verifier checks email/password pairs, plus a TOTP code for users that
// have the second factor enabled.
type Verifier struct {
	users    UserLookup
	validate func(code, secret string) bool
}

// NewVerifier creates a Verifier backed by users.
func NewVerifier(users UserLookup) *Verifier {
	return &Verifier{users: users, validate: totp.Validate}
}

// dummyHash is compared against when the email is unknown so the response
// time matches that of a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("inkwell-dummy-password"), 12)
	if err != nil {
		panic("auth: generate dummy hash: " + err.Error())
	}
	return h
})

// Verify authenticates email and password. code is only consulted for
// users with a second factor. Lookup failures are returned as-is; every
// rejection is ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, email, password, code string) (*Identity, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if user.RequiresCode() && !v.validate(strings.TrimSpace(code), *user.TOTPSecret) {
		return nil, ErrInvalidCredentials
	}

	return &Identity{UserID: user.ID, Email: user.Email}, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
