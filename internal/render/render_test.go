package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New("Inkwell")
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return rn
}

func samplePost() models.Post {
	cover := "/uploads/cover.png"
	return models.Post{
		ID:         uuid.New(),
		Title:      "Hello <World>",
		Slug:       "hello-world",
		Content:    "# Hello",
		Excerpt:    "An excerpt",
		CoverImage: &cover,
		Category:   &models.CategoryRef{ID: uuid.New(), Name: "Go", Slug: "go"},
		Tags:       []string{"go", "web"},
		Status:     models.PostStatusPublished,
		CreatedAt:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	rn := newTestRenderer(t)

	for _, name := range []string{"home", "blog", "post", "about", "contact", "not_found", "dashboard", "login", "admin_posts", "admin_post_form", "admin_categories"} {
		if !rn.Has(name) {
			t.Errorf("expected template %q to be parsed", name)
		}
	}

	// base.html should NOT appear as a standalone template key.
	if rn.Has("base") {
		t.Error("base.html should not be registered as a separate template")
	}
}

func TestPage(t *testing.T) {
	rn := newTestRenderer(t)
	post := samplePost()

	tests := []struct {
		name     string
		template string
		data     *PageData
		want     []string
		notWant  []string
	}{
		{
			name:     "home lists posts and categories",
			template: "home",
			data: &PageData{Section: "home", Data: map[string]any{
				"Posts":      []models.Post{post},
				"Categories": []models.Category{{Name: "Go", Slug: "go"}},
			}},
			want: []string{`href="/blog/hello-world"`, "Hello &lt;World&gt;", `href="/blog?category=go"`, "<title>Inkwell</title>"},
		},
		{
			name:     "blog shows pagination links",
			template: "blog",
			data: &PageData{Title: "Blog", Section: "blog", Data: map[string]any{
				"Posts":          []models.Post{post},
				"Categories":     []models.Category{{Name: "Go", Slug: "go"}},
				"ActiveCategory": "go",
				"Pagination":     models.Pagination{Page: 2, Limit: 4, Total: 9, TotalPages: 3},
				"PrevURL":        "/blog?category=go&page=1",
				"NextURL":        "/blog?category=go&page=3",
			}},
			want: []string{"Page 2 of 3", "page=1", "page=3", "<title>Blog | Inkwell</title>"},
		},
		{
			name:     "post renders trusted html and reading time",
			template: "post",
			data: &PageData{Title: post.Title, Section: "blog", Data: map[string]any{
				"Post":        &post,
				"HTML":        template.HTML("<h1 id=\"hello\">Hello</h1>"),
				"ReadingTime": 3,
			}},
			want: []string{`<h1 id="hello">Hello</h1>`, "3 min read", "#go", "14 March 2026", `src="/uploads/cover.png"`},
		},
		{
			name:     "empty blog",
			template: "blog",
			data:     &PageData{Data: map[string]any{"Pagination": models.Pagination{Page: 1, Limit: 4}}},
			want:     []string{"No posts found."},
			notWant:  []string{"Page 1 of"},
		},
		{
			name:     "login is standalone",
			template: "login",
			data:     &PageData{Title: "Sign in", Data: map[string]any{"Error": "invalid email or password", "Email": "a@b.c"}},
			want:     []string{"invalid email or password", `value="a@b.c"`, `name="csrf_token"`},
			notWant:  []string{"site-header"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			rn.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.template, tt.data)

			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200; body: %s", rr.Code, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type: got %q", ct)
			}
			body := rr.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q", s)
				}
			}
		})
	}
}

func TestPageInjectsSessionAndCSRF(t *testing.T) {
	rn := newTestRenderer(t)
	sess := &session.Data{UserID: uuid.New(), Email: "admin@inkwell.local"}

	var token string
	handler := middleware.NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = middleware.CSRFTokenFromCtx(r.Context())
		r = r.WithContext(middleware.WithSession(r.Context(), sess))
		rn.Page(w, r, "dashboard", &PageData{Section: "admin", Data: map[string]any{
			"Stats":  models.PostStats{Total: 3, Published: 2, Drafts: 1, Categories: 4},
			"Recent": []models.Post{samplePost()},
		}})
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

	body := rr.Body.String()
	if token == "" || !strings.Contains(body, `value="`+token+`"`) {
		t.Error("logout form should carry the CSRF token")
	}
	for _, s := range []string{"<strong>3</strong> posts", "<strong>4</strong> categories", "Sign out", "status-published"} {
		if !strings.Contains(body, s) {
			t.Errorf("body missing %q", s)
		}
	}
}

func TestNotFound(t *testing.T) {
	rn := newTestRenderer(t)
	rr := httptest.NewRecorder()
	rn.NotFound(rr, httptest.NewRequest(http.MethodGet, "/blog/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "does not exist") {
		t.Error("expected the not-found page body")
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	rn := newTestRenderer(t)
	rr := httptest.NewRecorder()
	rn.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil), "nope", &PageData{})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}
