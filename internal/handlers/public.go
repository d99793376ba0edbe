// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Blogium blog.
// Handlers are grouped by concern (public, posts, comments, auth) and
// receive their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogium/internal/markdown"
	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/storage"
	"blogium/internal/store"
)

// Public groups handlers for pages that do not require authentication:
// the home feed, category feeds, profiles, and post detail.
type Public struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	userStore     *store.UserStore
	commentStore  *store.CommentStore
	storageClient *storage.Client
}

// NewPublic creates a new Public handler group. storageClient may be nil
// if S3 is not configured.
func NewPublic(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, userStore *store.UserStore, commentStore *store.CommentStore, storageClient *storage.Client) *Public {
	return &Public{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		userStore:     userStore,
		commentStore:  commentStore,
		storageClient: storageClient,
	}
}

// pageParam reads the ?page= query parameter, defaulting to 1. Out-of-range
// values are clamped rather than rejected.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Home renders the paginated feed of publicly visible posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	page, err := p.postStore.ListHome(pageParam(r))
	if err != nil {
		slog.Error("list home feed failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "index", &render.PageData{
		Title: "Latest posts",
		Data: map[string]any{
			"Page":     page,
			"BasePath": "/",
		},
	})
}

// CategoryFeed renders the feed of visible posts in one published category.
// Unknown and unpublished categories both 404.
func (p *Public) CategoryFeed(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	category, err := p.categoryStore.FindPublishedBySlug(slugParam)
	if err != nil {
		slog.Error("find category failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		p.renderer.NotFound(w, r)
		return
	}

	page, err := p.postStore.ListByCategory(slugParam, pageParam(r))
	if err != nil {
		slog.Error("list category feed failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "category", &render.PageData{
		Title: category.Title,
		Data: map[string]any{
			"Category": category,
			"Page":     page,
			"BasePath": "/category/" + category.Slug,
		},
	})
}

// Profile renders a user's profile with their posts. The profile owner sees
// all of their posts, including unpublished and scheduled ones; everyone
// else sees only publicly visible posts.
func (p *Public) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := p.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("find profile user failed", "error", err, "username", username)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		p.renderer.NotFound(w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	isOwner := sess != nil && sess.UserID == user.ID

	page, err := p.postStore.ListByAuthor(username, isOwner, pageParam(r))
	if err != nil {
		slog.Error("list profile feed failed", "error", err, "username", username)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "profile", &render.PageData{
		Title: user.FullName(),
		Data: map[string]any{
			"Profile":  user,
			"IsOwner":  isOwner,
			"Page":     page,
			"BasePath": "/profile/" + user.Username,
		},
	})
}

// PostDetail renders a single post with its comments and comment form.
// Hidden posts (unpublished, scheduled, or in a hidden category) are only
// shown to their author; everyone else gets a 404.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := p.findVisiblePost(w, r)
	if !ok {
		return
	}
	p.renderDetail(w, r, post, "")
}

// findVisiblePost loads the post from the URL and applies the visibility
// policy. It writes the 404 response itself and returns ok=false when the
// post cannot be shown.
func (p *Public) findVisiblePost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		p.renderer.NotFound(w, r)
		return nil, false
	}

	post, err := p.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil {
		p.renderer.NotFound(w, r)
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	isOwner := sess != nil && sess.UserID == post.AuthorID
	if !isOwner && !post.VisibleAt(time.Now()) {
		p.renderer.NotFound(w, r)
		return nil, false
	}

	return post, true
}

// renderDetail renders the post detail page. commentError, when non-empty,
// is shown next to the comment form after a failed submission.
func (p *Public) renderDetail(w http.ResponseWriter, r *http.Request, post *models.Post, commentError string) {
	comments, err := p.commentStore.ListByPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	bodyHTML, err := markdown.ToHTML(post.Text)
	if err != nil {
		slog.Error("render post body failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var imageURL string
	if post.ImageKey != nil && p.storageClient != nil {
		imageURL = p.storageClient.FileURL(*post.ImageKey)
	}

	sess := middleware.SessionFromCtx(r.Context())

	p.renderer.Page(w, r, "detail", &render.PageData{
		Title: post.Title,
		Data: map[string]any{
			"Post":         post,
			"BodyHTML":     bodyHTML,
			"ImageURL":     imageURL,
			"Comments":     comments,
			"IsOwner":      sess != nil && sess.UserID == post.AuthorID,
			"CommentError": commentError,
		},
	})
}
