// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry. PubDate may lie in the future for scheduled
// publication; such posts stay hidden from public feeds until the date
// passes. Category and location are optional and detach on delete, while
// deleting the author deletes the post.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	PubDate     time.Time  `json:"pub_date"`
	IsPublished bool       `json:"is_published"`
	ImageKey    *string    `json:"image_key,omitempty"`
	AuthorID    uuid.UUID  `json:"author_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// CommentCount is the stored counter column. It is a non-authoritative
	// cache and is never incremented automatically; displayed counts always
	// come from LiveCommentCount.
	CommentCount int `json:"comment_count"`

	// Virtual fields populated by store queries.
	AuthorUsername    string  `json:"author_username,omitempty"`
	AuthorName        string  `json:"author_name,omitempty"`
	CategoryTitle     *string `json:"category_title,omitempty"`
	CategorySlug      *string `json:"category_slug,omitempty"`
	CategoryPublished *bool   `json:"category_published,omitempty"`
	LocationName      *string `json:"location_name,omitempty"`
	LiveCommentCount  int     `json:"live_comment_count"`
}

// VisibleAt reports whether the post is publicly presentable at the given
// instant: published, pub date reached (inclusive boundary), and attached
// to a published category. Posts without a category are never publicly
// visible.
func (p *Post) VisibleAt(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	return p.CategoryPublished != nil && *p.CategoryPublished
}

// Scheduled reports whether the post's publication date is still in the future.
func (p *Post) Scheduled() bool {
	return p.PubDate.After(time.Now())
}
