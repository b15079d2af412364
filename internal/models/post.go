// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid returns true for the two known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a blog article. Content is Markdown source; the public site
// renders it to HTML at request time.
type Post struct {
	ID         uuid.UUID    `json:"id"`
	Title      string       `json:"title"`
	Slug       string       `json:"slug"`
	Content    string       `json:"content"`
	Excerpt    string       `json:"excerpt"`
	CoverImage *string      `json:"coverImage,omitempty"`
	CategoryID uuid.UUID    `json:"-"`
	Category   *CategoryRef `json:"category"`
	Tags       []string     `json:"tags"`
	Status     PostStatus   `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// PostFilter selects a page of posts.
type PostFilter struct {
	Status     PostStatus
	CategoryID *uuid.UUID
	// CategorySlug is used when the caller identifies the category by slug.
	CategorySlug string
	Offset       int
	Limit        int
}

// Pagination describes a page within a filtered post listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PostPage is one page of posts plus the pagination metadata.
type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// PostStats holds the counts shown on the admin dashboard.
type PostStats struct {
	Total      int
	Published  int
	Drafts     int
	Categories int
}
