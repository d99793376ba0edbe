package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply attached to a post. CreatedAt is set once on insert
// and never changes; comment listings are always ordered by it ascending.
// Comments cascade-delete with their post and with their author.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual fields populated by store queries.
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorName     string `json:"author_name,omitempty"`
}
