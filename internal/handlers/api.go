package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/blog"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// API groups the JSON category and post endpoints.
type API struct {
	blog Blog
}

// NewAPI creates a new API handler group.
func NewAPI(b Blog) *API {
	return &API{blog: b}
}

// --- Categories ---

// ListCategories returns every category ordered by name.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.blog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a category and answers 201.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in blog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.blog.CreateCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory applies a partial update.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch blog.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.blog.UpdateCategory(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory removes a category that no post references.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.blog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "category deleted")
}

// --- Posts ---

// ListPosts returns a page of posts. all=1 lists drafts too, but only for
// authenticated callers; anonymous callers always get the public view.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	authenticated := middleware.SessionFromCtx(r.Context()) != nil
	params := blog.ListParams{
		Status:   models.PostStatus(q.Get("status")),
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
		All:      authenticated && isTruthy(q.Get("all")),
	}

	result, err := a.blog.ListPosts(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetPost finds a post by id or slug. Drafts are only visible to
// authenticated callers.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	authenticated := middleware.SessionFromCtx(r.Context()) != nil
	p, err := a.blog.GetPost(r.Context(), chi.URLParam(r, "id"), authenticated)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePost creates a post and answers 201.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in blog.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := a.blog.CreatePost(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePost applies a partial update.
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch blog.PostPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := a.blog.UpdatePost(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePost removes a post.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.blog.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "post deleted")
}

func isTruthy(s string) bool {
	switch s {
	case "1", "true", "yes":
		return true
	}
	return false
}
