package blog

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// CategoryInput is the body of a create-category request.
type CategoryInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// CategoryPatch is a partial category update. Nil fields are left as-is.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Description = emptyToNil(trimPtr(in.Description))
}

// Validate checks required fields and slug shape.
func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 100), isSlug),
	)
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory validates the input, refuses a name or slug already in
// use, and stores the new category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	if err := s.checkCategoryConflict(ctx, in.Name, in.Slug, uuid.Nil); err != nil {
		return nil, err
	}

	return s.categories.Create(ctx, &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
	})
}

// UpdateCategory merges the supplied fields into an existing category.
// A supplied name or slug may not collide with a different category.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("category")
	}

	in := CategoryInput{Name: current.Name, Slug: current.Slug, Description: current.Description}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Slug != nil {
		in.Slug = *patch.Slug
	}
	if patch.Description != nil {
		in.Description = patch.Description
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	var name, slug string
	if patch.Name != nil {
		name = in.Name
	}
	if patch.Slug != nil {
		slug = in.Slug
	}
	if err := s.checkCategoryConflict(ctx, name, slug, id); err != nil {
		return nil, err
	}

	current.Name, current.Slug, current.Description = in.Name, in.Slug, in.Description
	updated, err := s.categories.Update(ctx, current)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("category")
	}
	return updated, nil
}

// DeleteCategory removes a category that no post references.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	n, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &apperr.DependencyError{Resource: "category", Dependent: "post", Count: n}
	}

	deleted, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("category")
	}
	return nil
}

func (s *Service) checkCategoryConflict(ctx context.Context, name, slug string, exclude uuid.UUID) error {
	if name == "" && slug == "" {
		return nil
	}
	existing, err := s.categories.FindConflict(ctx, name, slug, exclude)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if name != "" && existing.Name == name {
		return apperr.Conflict("a category with this name already exists")
	}
	return apperr.Conflict("a category with this slug already exists")
}
