// Package blog implements the category and post operations behind both the
// JSON API and the server-rendered pages. It owns validation, conflict and
// dependency checks, and public visibility rules; persistence is delegated
// to the repositories in package store.
package blog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CategoryRepo is the persistence the service needs for categories.
// Reads return (nil, nil) when the row does not exist.
type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindConflict(ctx context.Context, name, slug string, exclude uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}

// PostRepo is the persistence the service needs for posts.
// Reads return (nil, nil) when the row does not exist.
type PostRepo interface {
	List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (models.PostStats, error)
}

// Service exposes the blog operations.
type Service struct {
	categories CategoryRepo
	posts      PostRepo
}

// NewService creates a Service over the given repositories.
func NewService(categories CategoryRepo, posts PostRepo) *Service {
	return &Service{categories: categories, posts: posts}
}

// Dashboard returns post and category counts plus the most recent posts
// of any status.
func (s *Service) Dashboard(ctx context.Context, recent int) (models.PostStats, []models.Post, error) {
	stats, err := s.posts.Stats(ctx)
	if err != nil {
		return stats, nil, err
	}
	if stats.Categories, err = s.categories.Count(ctx); err != nil {
		return stats, nil, err
	}
	posts, _, err := s.posts.List(ctx, models.PostFilter{Limit: recent})
	if err != nil {
		return stats, nil, err
	}
	return stats, posts, nil
}

// trimPtr trims a supplied optional string in place.
func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// emptyToNil turns a blank optional string into an absent one.
func emptyToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
