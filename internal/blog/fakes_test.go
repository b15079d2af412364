package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// memRepo is an in-memory implementation of CategoryRepo and PostRepo.
type memRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]models.Category
	posts      map[uuid.UUID]models.Post
	clock      time.Time
	lastFilter models.PostFilter
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[uuid.UUID]models.Category{},
		posts:      map[uuid.UUID]models.Post{},
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

// categoryRepo and postRepo split memRepo's methods by interface since
// both declare List, FindByID, Create, Update and Delete.
type categoryRepo struct{ *memRepo }
type postRepo struct{ *memRepo }

func newTestService() (*Service, *memRepo) {
	r := newMemRepo()
	return NewService(categoryRepo{r}, postRepo{r}), r
}

func (r categoryRepo) List(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Category{}
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r categoryRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r categoryRepo) FindConflict(_ context.Context, name, slug string, exclude uuid.UUID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.ID == exclude {
			continue
		}
		if (name != "" && c.Name == name) || (slug != "" && c.Slug == slug) {
			return &c, nil
		}
	}
	return nil, nil
}

func (r categoryRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := *c
	out.ID = uuid.New()
	out.CreatedAt = r.tick()
	out.UpdatedAt = out.CreatedAt
	r.categories[out.ID] = out
	return &out, nil
}

func (r categoryRepo) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.categories[c.ID]
	if !ok {
		return nil, nil
	}
	out := *c
	out.CreatedAt = prev.CreatedAt
	out.UpdatedAt = r.tick()
	r.categories[c.ID] = out
	return &out, nil
}

func (r categoryRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return false, nil
	}
	delete(r.categories, id)
	return true, nil
}

func (r categoryRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.categories), nil
}

func (r postRepo) resolve(p models.Post) models.Post {
	c := r.categories[p.CategoryID]
	p.Category = &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
	return p
}

func (r postRepo) List(_ context.Context, f models.PostFilter) ([]models.Post, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = f
	var matched []models.Post
	for _, p := range r.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.CategorySlug != "" && r.categories[p.CategoryID].Slug != f.CategorySlug {
			continue
		}
		matched = append(matched, r.resolve(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if f.Limit > 0 {
		start := min(f.Offset, total)
		end := min(start+f.Limit, total)
		matched = matched[start:end]
	}
	if matched == nil {
		matched = []models.Post{}
	}
	return matched, total, nil
}

func (r postRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		p = r.resolve(p)
		return &p, nil
	}
	return nil, nil
}

func (r postRepo) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			p = r.resolve(p)
			return &p, nil
		}
	}
	return nil, nil
}

func (r postRepo) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r postRepo) CountByCategory(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.posts {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (r postRepo) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := *p
	out.ID = uuid.New()
	out.CreatedAt = r.tick()
	out.UpdatedAt = out.CreatedAt
	r.posts[out.ID] = out
	out = r.resolve(out)
	return &out, nil
}

func (r postRepo) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.posts[p.ID]
	if !ok {
		return nil, nil
	}
	out := *p
	out.CreatedAt = prev.CreatedAt
	out.UpdatedAt = r.tick()
	r.posts[p.ID] = out
	out = r.resolve(out)
	return &out, nil
}

func (r postRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

func (r postRepo) Stats(context.Context) (models.PostStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st models.PostStats
	for _, p := range r.posts {
		st.Total++
		if p.IsPublished() {
			st.Published++
		} else {
			st.Drafts++
		}
	}
	return st, nil
}
