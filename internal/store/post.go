// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blogium/internal/models"
)

// PostStore handles all post-related database operations, including the
// public visibility filtering and paginated feed assembly.
type PostStore struct {
	db       *sql.DB
	pageSize int
}

// NewPostStore creates a new PostStore. pageSize controls feed pagination;
// values below 1 fall back to 10.
func NewPostStore(db *sql.DB, pageSize int) *PostStore {
	if pageSize < 1 {
		pageSize = 10
	}
	return &PostStore{db: db, pageSize: pageSize}
}

// PostPage is one page of a post feed.
type PostPage struct {
	Posts      []models.Post
	Number     int // 1-based page number
	PageSize   int
	TotalCount int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p *PostPage) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p *PostPage) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber returns the previous page number.
func (p *PostPage) PrevNumber() int { return p.Number - 1 }

// NextNumber returns the next page number.
func (p *PostPage) NextNumber() int { return p.Number + 1 }

// visibleWhere is the public visibility predicate: the post is published,
// its publication date has passed (inclusive boundary — a post dated
// exactly "now" is visible), and it sits under a published category.
// With the LEFT JOIN on categories, posts without a category fail the
// predicate (NULL is not TRUE), matching the feed semantics.
const visibleWhere = `p.is_published AND p.pub_date <= NOW() AND c.is_published`

// postSelect is the shared annotated SELECT for posts: author identity,
// category and location labels, and the live comment count aggregate.
// The stored comment_count column is scanned too but only as a cache;
// displayed counts come from the subquery.
const postSelect = `
	SELECT p.id, p.title, p.text, p.pub_date, p.is_published, p.image_key,
	       p.comment_count, p.author_id, p.category_id, p.location_id, p.created_at,
	       u.username, u.first_name, u.last_name,
	       c.title, c.slug, c.is_published,
	       l.name,
	       (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS live_comment_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id
`

// postCountFrom mirrors postSelect's join structure for total-count queries.
const postCountFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var firstName, lastName string
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Text, &p.PubDate, &p.IsPublished, &p.ImageKey,
		&p.CommentCount, &p.AuthorID, &p.CategoryID, &p.LocationID, &p.CreatedAt,
		&p.AuthorUsername, &firstName, &lastName,
		&p.CategoryTitle, &p.CategorySlug, &p.CategoryPublished,
		&p.LocationName,
		&p.LiveCommentCount,
	)
	if err != nil {
		return nil, err
	}
	p.AuthorName = strings.TrimSpace(firstName + " " + lastName)
	if p.AuthorName == "" {
		p.AuthorName = p.AuthorUsername
	}
	return &p, nil
}

// ListHome returns one page of the home feed: all publicly visible posts,
// newest publication date first, annotated with live comment counts.
func (s *PostStore) ListHome(page int) (*PostPage, error) {
	return s.listPage(
		`WHERE `+visibleWhere,
		nil,
		page,
	)
}

// ListByCategory returns one page of visible posts under the given category
// slug. The category's own publication check is the caller's concern
// (CategoryStore.FindPublishedBySlug); the visibility predicate here still
// re-checks c.is_published so an unpublished category's posts never leak.
func (s *PostStore) ListByCategory(slug string, page int) (*PostPage, error) {
	return s.listPage(
		`WHERE `+visibleWhere+` AND c.slug = $1`,
		[]any{slug},
		page,
	)
}

// ListByAuthor returns one page of posts by the given username, newest
// publication date first. When includeHidden is true (the profile owner
// viewing their own page) the visibility filter is bypassed entirely, so
// unpublished and future-dated posts are included.
func (s *PostStore) ListByAuthor(username string, includeHidden bool, page int) (*PostPage, error) {
	where := `WHERE u.username = $1`
	if !includeHidden {
		where += ` AND ` + visibleWhere
	}
	return s.listPage(where, []any{username}, page)
}

// listPage runs the shared count + select pair for a feed. where must use
// placeholders $1..$n matching args; limit and offset are appended after.
func (s *PostStore) listPage(where string, args []any, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) `+postCountFrom+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	limitPos := len(args) + 1
	query := fmt.Sprintf(
		"%s %s ORDER BY p.pub_date DESC LIMIT $%d OFFSET $%d",
		postSelect, where, limitPos, limitPos+1,
	)
	rows, err := s.db.Query(query, append(args, s.pageSize, (page-1)*s.pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return &PostPage{
		Posts:      posts,
		Number:     page,
		PageSize:   s.pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// FindByID retrieves a post by primary key with all annotations. No
// visibility filter applies here: an unpublished or future-dated post is
// reachable by anyone who has its identifier. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(postSelect+`WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it re-read with annotations.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO posts (title, text, pub_date, is_published, image_key,
		                   author_id, category_id, location_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.Text, p.PubDate, p.IsPublished, p.ImageKey,
		p.AuthorID, p.CategoryID, p.LocationID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing post's editable fields. Author and creation
// timestamp never change.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, text = $2, pub_date = $3, is_published = $4,
			image_key = $5, category_id = $6, location_id = $7
		WHERE id = $8
	`, p.Title, p.Text, p.PubDate, p.IsPublished,
		p.ImageKey, p.CategoryID, p.LocationID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Its comments cascade-delete.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
