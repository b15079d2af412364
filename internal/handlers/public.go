// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/xml"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/apperr"
	"inkwell/internal/blog"
	"inkwell/internal/markdown"
	"inkwell/internal/models"
	"inkwell/internal/render"
)

// Page sizes on the public site.
const (
	homePostCount = 3
	blogPageSize  = 4
)

// Public groups handlers for the server-rendered public site, the sitemap
// and the web manifest.
type Public struct {
	renderer *render.Renderer
	blog     Blog
	siteName string
	siteURL  string
}

// NewPublic creates a new Public handler group. siteURL is the absolute
// base used for sitemap links, without a trailing slash.
func NewPublic(renderer *render.Renderer, b Blog, siteName, siteURL string) *Public {
	return &Public{renderer: renderer, blog: b, siteName: siteName, siteURL: siteURL}
}

// Home renders the latest published posts and the category list.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := p.blog.ListPosts(ctx, blog.ListParams{Limit: homePostCount})
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	categories, err := p.blog.ListCategories(ctx)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "home", &render.PageData{
		Section: "home",
		Data: map[string]any{
			"Posts":      page.Posts,
			"Categories": categories,
		},
	})
}

// Blog renders one page of published posts, optionally filtered by
// category slug.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := p.blog.ListPosts(ctx, blog.ListParams{
		Category: category,
		Page:     pageNum,
		Limit:    blogPageSize,
	})
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	categories, err := p.blog.ListCategories(ctx)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	pg := result.Pagination
	data := map[string]any{
		"Posts":          result.Posts,
		"Categories":     categories,
		"ActiveCategory": category,
		"Pagination":     pg,
	}
	if pg.Page > 1 {
		data["PrevURL"] = blogURL(category, pg.Page-1)
	}
	if pg.Page < pg.TotalPages {
		data["NextURL"] = blogURL(category, pg.Page+1)
	}

	p.renderer.Page(w, r, "blog", &render.PageData{
		Title:   "Blog",
		Section: "blog",
		Data:    data,
	})
}

// Post renders a single published post with its markdown converted to HTML.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	post, err := p.blog.GetPost(r.Context(), chi.URLParam(r, "slug"), false)
	if err != nil {
		if apperr.IsNotFound(err) {
			p.renderer.NotFound(w, r)
			return
		}
		p.serverError(w, r, err)
		return
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	p.renderer.Page(w, r, "post", &render.PageData{
		Title:       post.Title,
		Description: post.Excerpt,
		Section:     "blog",
		Data: map[string]any{
			"Post":        post,
			"HTML":        template.HTML(html),
			"ReadingTime": markdown.ReadingTime(post.Content),
		},
	})
}

// About renders the static about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "about", &render.PageData{Title: "About", Section: "about"})
}

// ContactPage renders the contact form, which posts to /api/contact.
func (p *Public) ContactPage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "contact", &render.PageData{Title: "Contact", Section: "contact"})
}

// NotFound renders the standard not-found page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.NotFound(w, r)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap lists the static pages, every category listing and every
// published post with absolute URLs.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, s := range []struct{ path, freq, prio string }{
		{"/", "daily", "1.0"},
		{"/blog", "daily", "0.9"},
		{"/about", "monthly", "0.5"},
		{"/contact", "monthly", "0.5"},
	} {
		set.URLs = append(set.URLs, sitemapURL{Loc: p.siteURL + s.path, ChangeFreq: s.freq, Priority: s.prio})
	}

	categories, err := p.blog.ListCategories(ctx)
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        p.siteURL + blogURL(c.Slug, 1),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	posts, err := p.allPublished(r)
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        p.siteURL + "/blog/" + url.PathEscape(post.Slug),
			LastMod:    post.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		slog.Error("encode sitemap failed", "error", err)
	}
}

// allPublished walks every page of published posts.
func (p *Public) allPublished(r *http.Request) ([]models.Post, error) {
	var all []models.Post
	for page := 1; ; page++ {
		result, err := p.blog.ListPosts(r.Context(), blog.ListParams{Page: page, Limit: blog.MaxPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, result.Posts...)
		if page >= result.Pagination.TotalPages {
			return all, nil
		}
	}
}

// Manifest serves the web app manifest.
func (p *Public) Manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	writeJSON(w, http.StatusOK, map[string]any{
		"name":             p.siteName,
		"short_name":       p.siteName,
		"description":      p.siteName + " blog",
		"start_url":        "/",
		"display":          "standalone",
		"background_color": "#ffffff",
		"theme_color":      "#4f46e5",
	})
}

func (p *Public) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("render page failed", "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// blogURL builds a blog listing link. Page 1 is left implicit.
func blogURL(category string, page int) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/blog"
	}
	return "/blog?" + q.Encode()
}
