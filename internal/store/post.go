// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"inkwell/internal/models"
)

// PostStore handles CRUD operations for posts. Every read resolves the
// owning category so callers get {id, name, slug} alongside the post.
type PostStore struct {
	conn Connector
}

// NewPostStore creates a new PostStore.
func NewPostStore(conn Connector) *PostStore {
	return &PostStore{conn: conn}
}

const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.cover_image,
	       p.category_id, c.name, c.slug, p.tags, p.status,
	       p.created_at, p.updated_at
	FROM posts p
	JOIN categories c ON c.id = p.category_id`

// scanPost scans a joined post row. The tags column is a text[] and is
// decoded through a pgtype map.
func scanPost(row scanner, m *pgtype.Map) (*models.Post, error) {
	var (
		p   models.Post
		ref models.CategoryRef
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImage,
		&p.CategoryID, &ref.Name, &ref.Slug, m.SQLScanner(&p.Tags), &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ref.ID = p.CategoryID
	p.Category = &ref
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// whereClause builds the WHERE clause and arguments for a filter.
func whereClause(f models.PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of posts matching the filter, newest first, and
// the total number of matching posts.
func (s *PostStore) List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := whereClause(f)

	var total int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p JOIN categories c ON c.id = p.category_id`+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := postSelect + where + " ORDER BY p.created_at DESC, p.id"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows, m)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// FindByID retrieves a post by ID regardless of status. Returns nil if
// not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "find post by id", ` WHERE p.id = $1`, id)
}

// FindBySlug retrieves a post by slug regardless of status. Returns nil
// if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "find post by slug", ` WHERE p.slug = $1`, slug)
}

func (s *PostStore) findOne(ctx context.Context, op, where string, args ...any) (*models.Post, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, postSelect+where, args...)
	p, err := scanPost(row, pgtype.NewMap())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// SlugExists reports whether any post other than exclude uses slug.
func (s *PostStore) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// CountByCategory returns how many posts reference the category.
func (s *PostStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return n, nil
}

// Create inserts a new post and returns it with its category resolved.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, cover_image, category_id, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage, p.CategoryID,
		nonNilTags(p.Tags), p.Status,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", translate(err))
	}
	return s.FindByID(ctx, id)
}

// Update writes every editable column of an existing post and returns the
// stored row. Returns nil if the post no longer exists.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, cover_image = $5,
			category_id = $6, tags = $7, status = $8, updated_at = NOW()
		WHERE id = $9`,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage,
		p.CategoryID, nonNilTags(p.Tags), p.Status, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, p.ID)
}

// Delete removes a post by ID. It reports false when no row matched.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

// Stats returns post counts by status.
func (s *PostStore) Stats(ctx context.Context) (models.PostStats, error) {
	var st models.PostStats
	db, err := s.conn.DB(ctx)
	if err != nil {
		return st, err
	}

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE status = 'draft')
		FROM posts`,
	).Scan(&st.Total, &st.Published, &st.Drafts)
	if err != nil {
		return st, fmt.Errorf("post stats: %w", err)
	}
	return st, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
