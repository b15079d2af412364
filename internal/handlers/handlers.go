// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for inkwell. Handlers are
// grouped by concern (JSON API, auth, public pages, admin pages) and
// receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/blog"
	"inkwell/internal/models"
)

// maxJSONBody caps JSON request bodies. Post content is the largest field.
const maxJSONBody = 1 << 20

// Blog is the set of blog operations the handlers call. *blog.Service
// implements it.
type Blog interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, in blog.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch blog.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListPosts(ctx context.Context, p blog.ListParams) (*models.PostPage, error)
	GetPost(ctx context.Context, identifier string, includeDrafts bool) (*models.Post, error)
	CreatePost(ctx context.Context, in blog.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, patch blog.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	Dashboard(ctx context.Context, recent int) (models.PostStats, []models.Post, error)
}

// writeJSON encodes v as the JSON response body with the given status.
// A Content-Type already set by the caller is kept.
func writeJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json response failed", "error", err)
	}
}

// writeMessage writes {"message": msg} with status 200.
func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeError maps err onto its HTTP status and writes {"error": msg}.
// Unexpected errors are logged and answered without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		msg = http.StatusText(http.StatusInternalServerError)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON request body into dst. Malformed bodies are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Validation("request body is too large")
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		default:
			return apperr.Validation("invalid JSON body")
		}
	}
	return nil
}

// pathID parses the {id} URL parameter. A malformed id cannot name any
// record, so it is reported as not found.
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(resource)
	}
	return id, nil
}
