// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin pages. Page templates are paired with a shared base layout;
// standalone templates carry their own document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title       string         // Page title for <title> tag
	Description string         // Meta description
	Section     string         // Active navigation section (e.g., "blog", "admin")
	Session     *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken   string         // CSRF token for admin forms
	Data        map[string]any // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	siteName  string
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

// New creates a Renderer by parsing every embedded template. siteName is
// shown in page titles and the header.
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		siteName:  siteName,
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"date": func(t time.Time) string {
				return t.Format("2 January 2006")
			},
			"isoDate": func(t time.Time) string {
				return t.Format("2006-01-02")
			},
			"join": strings.Join,
			"year": func() int { return time.Now().Year() },
			"site": func() string { return siteName },
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var (
			tmpl     *template.Template
			parseErr error
		)
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, "templates/"+name)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/base.html", "templates/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders the named template with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// NotFound renders the standard not-found page with status 404.
func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.PageStatus(w, r, http.StatusNotFound, "not_found", &PageData{Title: "Page not found"})
}

// PageStatus renders the named template with the given status. The page
// is rendered into a buffer first so a template error never leaves a
// half-written response.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	// Inject CSRF token and session from context.
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execute failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Has reports whether a template with the given name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}
