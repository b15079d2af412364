package blog

import (
	"context"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// Listing defaults and bounds.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListParams selects a page of posts. Without All the listing is limited
// to published posts whatever Status says.
type ListParams struct {
	Status   models.PostStatus
	Category string // id or slug
	Page     int
	Limit    int
	All      bool
}

// PostInput is the body of a create-post request. Category is the
// category id; a category slug is also accepted.
type PostInput struct {
	Title      string            `json:"title"`
	Slug       string            `json:"slug"`
	Content    string            `json:"content"`
	Excerpt    string            `json:"excerpt"`
	CoverImage *string           `json:"coverImage"`
	Category   string            `json:"category"`
	Tags       []string          `json:"tags"`
	Status     models.PostStatus `json:"status"`
}

// PostPatch is a partial post update. Nil fields are left as-is.
type PostPatch struct {
	Title      *string            `json:"title"`
	Slug       *string            `json:"slug"`
	Content    *string            `json:"content"`
	Excerpt    *string            `json:"excerpt"`
	CoverImage *string            `json:"coverImage"`
	Category   *string            `json:"category"`
	Tags       *[]string          `json:"tags"`
	Status     *models.PostStatus `json:"status"`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Category = strings.TrimSpace(in.Category)
	in.CoverImage = emptyToNil(trimPtr(in.CoverImage))
	in.Tags = normalizeTags(in.Tags)
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
}

// Validate checks required fields, slug shape and status.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 300), isSlug),
		validation.Field(&in.Content, validation.By(notBlank)),
		validation.Field(&in.Excerpt, validation.Required, validation.Length(1, 1000)),
		validation.Field(&in.Category, validation.Required),
		validation.Field(&in.Status, validation.In(models.PostStatusDraft, models.PostStatusPublished)),
	)
}

// notBlank rejects content that is empty or whitespace. Content is stored
// untrimmed so leading indentation in markdown survives.
func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

// normalizeTags trims tags, drops blanks and duplicates, and keeps order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ListPosts returns one page of posts, newest first, with pagination
// metadata.
func (s *Service) ListPosts(ctx context.Context, p ListParams) (*models.PostPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	// Keep the offset representable; such pages are simply empty.
	if maxPage := math.MaxInt/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}

	f := models.PostFilter{
		Status: models.PostStatusPublished,
		Offset: (p.Page - 1) * p.Limit,
		Limit:  p.Limit,
	}
	if p.All {
		if p.Status != "" && !p.Status.Valid() {
			return nil, apperr.Validation("status must be draft or published")
		}
		f.Status = p.Status
	}
	if c := strings.TrimSpace(p.Category); c != "" {
		cat, err := s.lookupCategory(ctx, c)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			f.CategoryID = &cat.ID
		} else {
			f.CategorySlug = c
		}
	}

	posts, total, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, err
	}

	return &models.PostPage{
		Posts: posts,
		Pagination: models.Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: (total + p.Limit - 1) / p.Limit,
		},
	}, nil
}

// GetPost finds a post by id or by slug. An identifier shaped like a UUID
// is tried as an id first, then as a slug. Drafts are reported as not
// found unless includeDrafts is set.
func (s *Service) GetPost(ctx context.Context, identifier string, includeDrafts bool) (*models.Post, error) {
	var (
		p   *models.Post
		err error
	)
	if id, perr := uuid.Parse(identifier); perr == nil {
		p, err = s.posts.FindByID(ctx, id)
	}
	if err == nil && p == nil {
		p, err = s.posts.FindBySlug(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if p == nil || (!includeDrafts && !p.IsPublished()) {
		return nil, apperr.NotFound("post")
	}
	return p, nil
}

// CreatePost validates the input, resolves the category, refuses a slug
// already in use, and stores the post. Status defaults to draft and tags
// to the empty set.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	cat, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	taken, err := s.posts.SlugExists(ctx, in.Slug, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("a post with this slug already exists")
	}

	return s.posts.Create(ctx, &models.Post{
		Title:      in.Title,
		Slug:       in.Slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		CategoryID: cat.ID,
		Tags:       in.Tags,
		Status:     in.Status,
	})
}

// UpdatePost merges the supplied fields into an existing post. The slug
// uniqueness check runs only when the slug actually changes.
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, patch PostPatch) (*models.Post, error) {
	current, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("post")
	}

	in := PostInput{
		Title:      current.Title,
		Slug:       current.Slug,
		Content:    current.Content,
		Excerpt:    current.Excerpt,
		CoverImage: current.CoverImage,
		Category:   current.CategoryID.String(),
		Tags:       current.Tags,
		Status:     current.Status,
	}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Slug != nil {
		in.Slug = *patch.Slug
	}
	if patch.Content != nil {
		in.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		in.Excerpt = *patch.Excerpt
	}
	if patch.CoverImage != nil {
		in.CoverImage = patch.CoverImage
	}
	if patch.Category != nil {
		in.Category = *patch.Category
	}
	if patch.Tags != nil {
		in.Tags = *patch.Tags
	}
	if patch.Status != nil {
		in.Status = *patch.Status
		if in.Status == "" {
			return nil, apperr.Validation("status: must be draft or published.")
		}
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	categoryID := current.CategoryID
	if patch.Category != nil {
		cat, err := s.resolveCategory(ctx, in.Category)
		if err != nil {
			return nil, err
		}
		categoryID = cat.ID
	}

	if in.Slug != current.Slug {
		taken, err := s.posts.SlugExists(ctx, in.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("a post with this slug already exists")
		}
	}

	updated, err := s.posts.Update(ctx, &models.Post{
		ID:         id,
		Title:      in.Title,
		Slug:       in.Slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		CategoryID: categoryID,
		Tags:       in.Tags,
		Status:     in.Status,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("post")
	}
	return updated, nil
}

// DeletePost removes a post. Its category is unaffected.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("post")
	}
	return nil
}

// resolveCategory looks up a category by id or slug. An unknown category
// is a validation error on the post, not a missing resource.
func (s *Service) resolveCategory(ctx context.Context, ref string) (*models.Category, error) {
	c, err := s.lookupCategory(ctx, ref)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.Validation("category not found")
	}
	return c, nil
}

// lookupCategory tries ref as an id when it parses as a UUID, then as a
// slug. It returns (nil, nil) when neither matches.
func (s *Service) lookupCategory(ctx context.Context, ref string) (*models.Category, error) {
	if id, err := uuid.Parse(ref); err == nil {
		c, err := s.categories.FindByID(ctx, id)
		if err != nil || c != nil {
			return c, err
		}
	}
	return s.categories.FindBySlug(ctx, ref)
}
