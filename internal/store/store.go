// Package store provides database access methods for every inkwell entity.
// Each store borrows the shared pool from a Connector on every call and
// exposes typed query methods. Reads of a missing row return (nil, nil).
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/apperr"
)

// Connector hands out the shared connection pool. database.Manager
// implements it.
type Connector interface {
	DB(ctx context.Context) (*sql.DB, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// PostgreSQL error codes the stores translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps constraint violations onto the application error types.
// Services check for conflicts before writing; this covers the races
// between that check and the statement.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case "categories_name_key":
			return apperr.Conflict("a category with this name already exists")
		case "categories_slug_key":
			return apperr.Conflict("a category with this slug already exists")
		case "posts_slug_key":
			return apperr.Conflict("a post with this slug already exists")
		case "users_email_key":
			return apperr.Conflict("a user with this email already exists")
		}
		return apperr.Conflict("duplicate value")
	case pgForeignKeyViolation:
		return apperr.Validation("category not found")
	}
	return err
}

// isForeignKeyViolation reports whether err is a PostgreSQL FK violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
