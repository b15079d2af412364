package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

// PasswordCost is the bcrypt cost used when storing passwords.
const PasswordCost = 12

// UserStore handles all user-related database operations. The server only
// reads users; writes come from the provisioning CLI.
type UserStore struct {
	conn Connector
}

// NewUserStore creates a new UserStore.
func NewUserStore(conn Connector) *UserStore {
	return &UserStore{conn: conn}
}

const userColumns = `id, email, password_hash, totp_secret, totp_enabled, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "find user by email", `WHERE email = $1`, email)
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, "find user by id", `WHERE id = $1`, id)
}

func (s *UserStore) findOne(ctx context.Context, op, where string, arg any) (*models.User, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password. A non-nil
// totpSecret enables the second factor for the account.
func (s *UserStore) Create(ctx context.Context, email, password string, totpSecret *string) (*models.User, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, totp_secret, totp_enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, string(hash), totpSecret, totpSecret != nil,
	))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", translate(err))
	}
	return u, nil
}

// Count returns the total number of users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
