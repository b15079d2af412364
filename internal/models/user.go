// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an admin credential. Users are provisioned out-of-band and are
// read-only to the running server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	TOTPSecret   *string   `json:"-"` // Nullable; set when a second factor is provisioned
	TOTPEnabled  bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RequiresCode returns true if login must also present a TOTP code.
func (u *User) RequiresCode() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
