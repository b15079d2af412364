// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	conn Connector
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(conn Connector) *CategoryStore {
	return &CategoryStore{conn: conn}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find category by id", `WHERE id = $1`, id)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, "find category by slug", `WHERE slug = $1`, slug)
}

// FindConflict returns a category other than exclude whose name equals
// name or whose slug equals slug. Empty values are not matched. Returns
// nil when there is no such category.
func (s *CategoryStore) FindConflict(ctx context.Context, name, slug string, exclude uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find conflicting category", `
		WHERE ((name = $1 AND $1 <> '') OR (slug = $2 AND $2 <> ''))
		  AND id <> $3
		LIMIT 1`, name, slug, exclude)
}

func (s *CategoryStore) findOne(ctx context.Context, op, where string, args ...any) (*models.Category, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories `+where, args...)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", translate(err))
	}
	return result, nil
}

// Update writes name, slug and description of an existing category and
// returns the stored row. Returns nil if the category no longer exists.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ID,
	)
	result, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", translate(err))
	}
	return result, nil
}

// Delete removes a category by ID. It reports false when no row matched.
// The posts foreign key refuses the delete while any post references the
// category.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		// A post was attached after the caller's dependency check.
		var n int
		if cerr := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM posts WHERE category_id = $1`, id,
		).Scan(&n); cerr != nil {
			return false, fmt.Errorf("count category posts: %w", cerr)
		}
		if n == 0 {
			return false, apperr.Conflict("category changed while deleting; try again")
		}
		return false, &apperr.DependencyError{Resource: "category", Dependent: "post", Count: n}
	}
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return n > 0, nil
}

// Count returns the total number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
