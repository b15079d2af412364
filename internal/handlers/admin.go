// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/blog"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/slug"
)

const (
	// recentPostCount is how many posts the dashboard lists.
	recentPostCount = 5

	// adminPageSize is the number of rows per page in the posts table.
	adminPageSize = 20

	unexpectedError = "An unexpected error occurred."
)

// adminNotices are the confirmations shown after a redirect. Only known
// keys are rendered so the query string cannot inject text.
var adminNotices = map[string]string{
	"post-created":     "Post created.",
	"post-updated":     "Post updated.",
	"post-deleted":     "Post deleted.",
	"category-created": "Category created.",
	"category-updated": "Category updated.",
	"category-deleted": "Category deleted.",
}

// Admin groups the admin panel page handlers.
type Admin struct {
	renderer *render.Renderer
	blog     Blog
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, b Blog) *Admin {
	return &Admin{renderer: renderer, blog: b}
}

// Dashboard renders post and category counts and the most recent posts
// of any status.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, recent, err := a.blog.Dashboard(r.Context(), recentPostCount)
	if err != nil {
		a.serverError(w, r, "load dashboard failed", err)
		return
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "admin",
		Data: map[string]any{
			"Stats":  stats,
			"Recent": recent,
		},
	})
}

// --- Posts ---

// postForm carries the post editor fields as the browser submitted them.
type postForm struct {
	ID         string
	Title      string
	Slug       string
	Content    string
	Excerpt    string
	CoverImage string
	Category   string
	Tags       string
	Status     string
}

func postFormFromRequest(r *http.Request) postForm {
	f := postForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Slug:       strings.TrimSpace(r.FormValue("slug")),
		Content:    r.FormValue("content"),
		Excerpt:    r.FormValue("excerpt"),
		CoverImage: strings.TrimSpace(r.FormValue("coverImage")),
		Category:   r.FormValue("category"),
		Tags:       r.FormValue("tags"),
		Status:     r.FormValue("status"),
	}
	if f.Slug == "" {
		f.Slug = slug.Generate(f.Title)
	}
	if f.Status == "" {
		f.Status = string(models.PostStatusDraft)
	}
	return f
}

func postFormFromPost(p *models.Post) postForm {
	return postForm{
		ID:         p.ID.String(),
		Title:      p.Title,
		Slug:       p.Slug,
		Content:    p.Content,
		Excerpt:    p.Excerpt,
		CoverImage: deref(p.CoverImage),
		Category:   p.CategoryID.String(),
		Tags:       strings.Join(p.Tags, ", "),
		Status:     string(p.Status),
	}
}

// splitTags parses a comma-separated tag field. The service trims and
// deduplicates.
func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// PostsList renders the posts table, drafts included, with an optional
// status filter.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.PostStatus(q.Get("status"))
	if !status.Valid() {
		status = ""
	}
	pageNum, _ := strconv.Atoi(q.Get("page"))

	result, err := a.blog.ListPosts(r.Context(), blog.ListParams{
		All:    true,
		Status: status,
		Page:   pageNum,
		Limit:  adminPageSize,
	})
	if err != nil {
		a.serverError(w, r, "list posts failed", err)
		return
	}

	pg := result.Pagination
	data := map[string]any{
		"Posts":      result.Posts,
		"Pagination": pg,
		"Status":     string(status),
		"Notice":     adminNotices[q.Get("notice")],
	}
	if pg.Page > 1 {
		data["PrevURL"] = adminPostsURL(status, pg.Page-1)
	}
	if pg.Page < pg.TotalPages {
		data["NextURL"] = adminPostsURL(status, pg.Page+1)
	}

	a.renderer.Page(w, r, "admin_posts", &render.PageData{
		Title:   "Posts",
		Section: "admin",
		Data:    data,
	})
}

// PostNew renders an empty post editor.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.renderPostForm(w, r, http.StatusOK, postForm{Status: string(models.PostStatusDraft)}, "")
}

// PostCreate handles the new post form. A blank slug is derived from the
// title.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	f := postFormFromRequest(r)

	_, err := a.blog.CreatePost(r.Context(), blog.PostInput{
		Title:      f.Title,
		Slug:       f.Slug,
		Content:    f.Content,
		Excerpt:    f.Excerpt,
		CoverImage: &f.CoverImage,
		Category:   f.Category,
		Tags:       splitTags(f.Tags),
		Status:     models.PostStatus(f.Status),
	})
	if err != nil {
		status, msg := a.formError(r, "create post failed", err)
		a.renderPostForm(w, r, status, f, msg)
		return
	}
	http.Redirect(w, r, "/admin/posts?notice=post-created", http.StatusSeeOther)
}

// PostEdit renders the editor for an existing post of any status.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post")
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}
	p, err := a.blog.GetPost(r.Context(), id.String(), true)
	if apperr.IsNotFound(err) {
		a.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, "load post failed", err)
		return
	}
	a.renderPostForm(w, r, http.StatusOK, postFormFromPost(p), "")
}

// PostUpdate handles the edit form. Every field is submitted, so each one
// is written back.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post")
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}
	f := postFormFromRequest(r)
	f.ID = id.String()

	tags := splitTags(f.Tags)
	status := models.PostStatus(f.Status)
	_, err = a.blog.UpdatePost(r.Context(), id, blog.PostPatch{
		Title:      &f.Title,
		Slug:       &f.Slug,
		Content:    &f.Content,
		Excerpt:    &f.Excerpt,
		CoverImage: &f.CoverImage,
		Category:   &f.Category,
		Tags:       &tags,
		Status:     &status,
	})
	if apperr.IsNotFound(err) {
		a.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		code, msg := a.formError(r, "update post failed", err)
		a.renderPostForm(w, r, code, f, msg)
		return
	}
	http.Redirect(w, r, "/admin/posts?notice=post-updated", http.StatusSeeOther)
}

// PostDelete removes a post and returns to the posts table.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post")
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}
	err = a.blog.DeletePost(r.Context(), id)
	if apperr.IsNotFound(err) {
		a.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, "delete post failed", err)
		return
	}
	http.Redirect(w, r, "/admin/posts?notice=post-deleted", http.StatusSeeOther)
}

func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, status int, f postForm, errMsg string) {
	categories, err := a.blog.ListCategories(r.Context())
	if err != nil {
		a.serverError(w, r, "list categories failed", err)
		return
	}

	title, action := "New post", "/admin/posts"
	if f.ID != "" {
		title, action = "Edit post", "/admin/posts/"+f.ID
	}
	a.renderer.PageStatus(w, r, status, "admin_post_form", &render.PageData{
		Title:   title,
		Section: "admin",
		Data: map[string]any{
			"Form":       f,
			"Action":     action,
			"Categories": categories,
			"Error":      errMsg,
		},
	})
}

// --- Categories ---

// categoryForm carries the category fields as the browser submitted them.
type categoryForm struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

func categoryFormFromRequest(r *http.Request) categoryForm {
	f := categoryForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: r.FormValue("description"),
	}
	if f.Slug == "" {
		f.Slug = slug.Generate(f.Name)
	}
	return f
}

// CategoriesList renders the category table with the create form.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	a.renderCategories(w, r, http.StatusOK, categoryForm{}, "", adminNotices[r.URL.Query().Get("notice")])
}

// CategoryCreate handles the create form on the categories page.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	f := categoryFormFromRequest(r)
	_, err := a.blog.CreateCategory(r.Context(), blog.CategoryInput{
		Name:        f.Name,
		Slug:        f.Slug,
		Description: &f.Description,
	})
	if err != nil {
		status, msg := a.formError(r, "create category failed", err)
		a.renderCategories(w, r, status, f, msg, "")
		return
	}
	http.Redirect(w, r, "/admin/categories?notice=category-created", http.StatusSeeOther)
}

// CategoryUpdate handles a row's edit form on the categories page.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category")
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}
	f := categoryFormFromRequest(r)
	_, err = a.blog.UpdateCategory(r.Context(), id, blog.CategoryPatch{
		Name:        &f.Name,
		Slug:        &f.Slug,
		Description: &f.Description,
	})
	if apperr.IsNotFound(err) {
		a.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		status, msg := a.formError(r, "update category failed", err)
		a.renderCategories(w, r, status, categoryForm{}, msg, "")
		return
	}
	http.Redirect(w, r, "/admin/categories?notice=category-updated", http.StatusSeeOther)
}

// CategoryDelete removes a category. A category that still has posts is
// refused with the number of posts in the message.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category")
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}
	err = a.blog.DeleteCategory(r.Context(), id)
	if apperr.IsNotFound(err) {
		a.renderer.NotFound(w, r)
		return
	}
	if err != nil {
		status, msg := a.formError(r, "delete category failed", err)
		a.renderCategories(w, r, status, categoryForm{}, msg, "")
		return
	}
	http.Redirect(w, r, "/admin/categories?notice=category-deleted", http.StatusSeeOther)
}

func (a *Admin) renderCategories(w http.ResponseWriter, r *http.Request, status int, f categoryForm, errMsg, notice string) {
	categories, err := a.blog.ListCategories(r.Context())
	if err != nil {
		a.serverError(w, r, "list categories failed", err)
		return
	}
	a.renderer.PageStatus(w, r, status, "admin_categories", &render.PageData{
		Title:   "Categories",
		Section: "admin",
		Data: map[string]any{
			"Categories": categories,
			"Form":       f,
			"Error":      errMsg,
			"Notice":     notice,
		},
	})
}

// --- Helpers ---

// formError maps a service error onto the status and message shown above
// a form. Unexpected errors are logged and reported generically.
func (a *Admin) formError(r *http.Request, msg string, err error) (int, string) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "path", r.URL.Path)
		return status, unexpectedError
	}
	return status, err.Error()
}

func (a *Admin) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func adminPostsURL(status models.PostStatus, page int) string {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/admin/posts"
	}
	return "/admin/posts?" + q.Encode()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
