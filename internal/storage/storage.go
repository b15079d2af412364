// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage validates uploaded images and stores them either on the
// local disk or in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math/big"
	"net/http"
	"time"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxImageSize is the largest accepted upload (5 MB).
const MaxImageSize = 5 << 20

// maxImagePixels caps decoded dimensions to refuse decompression bombs.
const maxImagePixels = 40_000_000

var (
	// ErrTooLarge is returned for uploads over MaxImageSize.
	ErrTooLarge = errors.New("file must be smaller than 5MB")
	// ErrUnsupportedType is returned for anything but JPEG, PNG, WebP and GIF.
	ErrUnsupportedType = errors.New("only JPEG, PNG, WebP and GIF images are accepted")
)

// allowedTypes maps accepted MIME types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Uploader persists a validated image under name and returns its public URL.
type Uploader interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Image describes an upload that passed Inspect.
type Image struct {
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Inspect checks that data is an accepted image: within size, sniffed as
// an allowed type, and decodable as that type.
func Inspect(data []byte) (*Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrUnsupportedType
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || "image/"+normalizeFormat(format) != contentType {
		return nil, ErrUnsupportedType
	}
	if cfg.Width*cfg.Height > maxImagePixels {
		return nil, fmt.Errorf("image dimensions %dx%d are too large", cfg.Width, cfg.Height)
	}

	return &Image{ContentType: contentType, Ext: ext, Width: cfg.Width, Height: cfg.Height}, nil
}

// normalizeFormat maps image package format names onto MIME subtypes.
func normalizeFormat(format string) string {
	if format == "jpg" {
		return "jpeg"
	}
	return format
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewFilename returns "<unix millis>-<6 random chars>.<ext>".
func NewFilename(now time.Time, ext string) (string, error) {
	suffix := make([]byte, 6)
	limit := big.NewInt(int64(len(nameAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("random filename: %w", err)
		}
		suffix[i] = nameAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%d-%s.%s", now.UnixMilli(), suffix, ext), nil
}
