// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation.
// Non-ASCII input is transliterated, so "Tasarım" becomes "tasarim".
package slug

import (
	"strings"

	gosimple "github.com/gosimple/slug"
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	return gosimple.Make(strings.TrimSpace(s))
}

// Valid reports whether s is already a URL-safe slug: lowercase ASCII
// letters and digits separated by single hyphens or underscores.
func Valid(s string) bool {
	return gosimple.IsSlug(s)
}
