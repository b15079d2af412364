// Package database handles PostgreSQL connection management and migration
// execution using goose. Manager lazily opens and memoizes the single
// *sql.DB pool shared by every store; Migrate applies the embedded schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"
)

//go:embed migrations
var embedMigrations embed.FS

// ErrNoDatabaseURL is returned when no connection string is configured.
var ErrNoDatabaseURL = errors.New("database: DATABASE_URL is not set")

// Connection pool limits.
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// Connect opens a PostgreSQL connection pool using the provided DSN.
// It verifies the connection with a ping before returning.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected")
	return db, nil
}

// Manager owns the process-wide database handle. The first call to DB
// connects; later calls return the memoized pool. Concurrent first calls
// wait on the same in-flight attempt instead of dialing again. A failed
// attempt is not memoized, so the next call tries again.
type Manager struct {
	dsn  string
	open func(ctx context.Context, dsn string) (*sql.DB, error)

	group singleflight.Group
	mu    sync.RWMutex
	db    *sql.DB
}

// NewManager returns a Manager for dsn. No connection is made until DB
// is first called.
func NewManager(dsn string) *Manager {
	return &Manager{dsn: dsn, open: Connect}
}

// DB returns the shared connection pool, connecting on first use.
func (m *Manager) DB(ctx context.Context) (*sql.DB, error) {
	if db := m.current(); db != nil {
		return db, nil
	}
	if m.dsn == "" {
		return nil, ErrNoDatabaseURL
	}

	v, err, _ := m.group.Do("connect", func() (any, error) {
		if db := m.current(); db != nil {
			return db, nil
		}
		// The attempt is shared, so one caller's cancellation must not
		// abort it for the others.
		db, err := m.open(context.WithoutCancel(ctx), m.dsn)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.db = db
		m.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

// Close releases the pool if one was opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func (m *Manager) current() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Migrate runs all pending goose migrations from the embedded SQL files.
// Migrations are embedded at compile time so no external files are needed
// at runtime.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}
