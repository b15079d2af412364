package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails to parse or verify.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// claims carries the identity in a signed token. The subject is the user id.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and parses HS256 bearer tokens for API clients.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a Tokens signing with secret. A non-positive ttl
// selects DefaultTokenTTL.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for id and returns it with its expiry.
func (t *Tokens) Issue(id Identity) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	c := claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns the identity it carries.
func (t *Tokens) Parse(token string) (*Identity, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: id, Email: c.Email}, nil
}
