package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Default development credentials created by Seed.
const (
	DefaultAdminEmail    = "admin@inkwell.local"
	DefaultAdminPassword = "admin123"

	// PasswordCost is the bcrypt cost used for every stored password.
	PasswordCost = 12
)

// Seed creates a default admin user if the users table is empty. It is
// only called in development; production users are provisioned with the
// inkwell-admin CLI.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), PasswordCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, DefaultAdminEmail, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", DefaultAdminEmail,
		"password", DefaultAdminPassword,
	)

	return nil
}
