// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/apperr"
	"inkwell/internal/storage"
)

// multipartOverhead is the allowance for multipart headers and boundaries
// on top of the file itself.
const multipartOverhead = 64 << 10

// Upload handles image uploads for post cover images.
type Upload struct {
	uploader storage.Uploader
	now      func() time.Time
}

// NewUpload creates a new Upload handler backed by uploader.
func NewUpload(uploader storage.Uploader) *Upload {
	return &Upload{uploader: uploader, now: time.Now}
}

// Create accepts a multipart "file" field, verifies it is an image of an
// accepted type within the size limit, stores it under a fresh name and
// answers {url, filename}.
func (u *Upload) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, apperr.Validation("%s", storage.ErrTooLarge.Error()))
			return
		}
		writeError(w, r, apperr.Validation("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperr.Validation("file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		writeError(w, r, err)
		return
	}

	img, err := storage.Inspect(data)
	if err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	name, err := storage.NewFilename(u.now(), img.Ext)
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, err := u.uploader.Save(r.Context(), name, img.ContentType, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("image uploaded", "filename", name, "type", img.ContentType,
		"width", img.Width, "height", img.Height, "bytes", len(data))
	writeJSON(w, http.StatusOK, map[string]string{"url": url, "filename": name})
}
