// Package router sets up all HTTP routes and middleware chains for
// inkwell. It organizes routes into the public site, the JSON API and the
// admin pages, each with its own middleware stack.
package router

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/web"
)

// Deps are the handler groups and middleware collaborators the router
// wires together.
type Deps struct {
	Sessions middleware.SessionReader
	Tokens   middleware.TokenParser

	API    *handlers.API
	Auth   *handlers.Auth
	Public *handlers.Public
	Admin  *handlers.Admin
	Upload *handlers.Upload

	// UploadDir is served at /uploads/ when set (disk storage backend).
	UploadDir string
	// Secure marks cookies Secure and enables HSTS.
	Secure bool
	// Logger receives request logs; nil means slog.Default.
	Logger *slog.Logger
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.NewLogger(d.Logger))
	r.Use(middleware.NewSecureHeaders(d.Secure))
	r.Use(middleware.LoadSession(d.Sessions, d.Tokens))

	// Health check, no auth, no CSRF.
	r.Get("/health", healthHandler)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: static assets missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	r.Get("/sitemap.xml", d.Public.Sitemap)
	r.Get("/manifest.webmanifest", d.Public.Manifest)

	// Public site.
	r.Get("/", d.Public.Home)
	r.Get("/blog", d.Public.Blog)
	r.Get("/blog/{slug}", d.Public.Post)
	r.Get("/about", d.Public.About)
	r.Get("/contact", d.Public.ContactPage)

	// JSON API. Reads are public; writes need a session or bearer token.
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", d.API.ListCategories)
		r.Get("/posts", d.API.ListPosts)
		r.Get("/posts/{id}", d.API.GetPost)
		r.Post("/contact", handlers.Contact)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", d.Auth.APILogin)
			r.Post("/logout", d.Auth.APILogout)
			r.Get("/session", d.Auth.APISession)
			r.Post("/token", d.Auth.APIToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIAuth)

			r.Post("/categories", d.API.CreateCategory)
			r.Put("/categories/{id}", d.API.UpdateCategory)
			r.Delete("/categories/{id}", d.API.DeleteCategory)

			r.Post("/posts", d.API.CreatePost)
			r.Put("/posts/{id}", d.API.UpdatePost)
			r.Delete("/posts/{id}", d.API.DeletePost)

			r.Post("/upload", d.Upload.Create)
		})

		r.NotFound(apiNotFound)
	})

	// Admin pages, behind the access gate and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.Secure))
		r.Use(middleware.AdminGate)

		r.Get("/login", d.Auth.LoginPage)
		r.Post("/login", d.Auth.LoginSubmit)
		r.Post("/logout", d.Auth.Logout)
		r.Get("/", d.Admin.Dashboard)

		// HTML forms only send GET and POST, so updates and deletes are POSTs.
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Admin.PostsList)
			r.Get("/new", d.Admin.PostNew)
			r.Post("/", d.Admin.PostCreate)
			r.Get("/{id}/edit", d.Admin.PostEdit)
			r.Post("/{id}", d.Admin.PostUpdate)
			r.Post("/{id}/delete", d.Admin.PostDelete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Admin.CategoriesList)
			r.Post("/", d.Admin.CategoryCreate)
			r.Post("/{id}", d.Admin.CategoryUpdate)
			r.Post("/{id}/delete", d.Admin.CategoryDelete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			apiNotFound(w, req)
			return
		}
		d.Public.NotFound(w, req)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not found"}` + "\n"))
}
