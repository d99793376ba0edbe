// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/store"
)

// Comments groups handlers for creating and managing comments. All routes
// require an authenticated session; ownership failures redirect to the
// post detail page instead of erroring.
type Comments struct {
	renderer     *render.Renderer
	postStore    *store.PostStore
	commentStore *store.CommentStore
	public       *Public
}

// NewComments creates a new Comments handler group. The Public group is
// needed to re-render the post detail page on validation failure.
func NewComments(renderer *render.Renderer, postStore *store.PostStore, commentStore *store.CommentStore, public *Public) *Comments {
	return &Comments{
		renderer:     renderer,
		postStore:    postStore,
		commentStore: commentStore,
		public:       public,
	}
}

// Create attaches a new comment to a post. A missing post 404s; an empty
// comment re-renders the detail page with an inline error.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return
	}

	post, err := h.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post for comment failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		h.renderer.NotFound(w, r)
		return
	}

	text := r.FormValue("text")
	if msg := validateComment(text); msg != "" {
		h.public.renderDetail(w, r, post, msg)
		return
	}

	_, err = h.commentStore.Create(&models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: sess.UserID,
	})
	if err != nil {
		slog.Error("create comment failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+post.ID.String(), http.StatusSeeOther)
}

// EditPage renders the comment edit form. Non-owners are redirected to the
// post detail page.
func (h *Comments) EditPage(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.findOwnComment(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "comment_form", &render.PageData{
		Title: "Edit comment",
		Data: map[string]any{
			"Text":   comment.Text,
			"Action": commentActionURL(comment, "edit"),
		},
	})
}

// Update saves the edited comment text. CreatedAt stays untouched, so the
// comment keeps its place in the thread.
func (h *Comments) Update(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.findOwnComment(w, r)
	if !ok {
		return
	}

	text := r.FormValue("text")
	if msg := validateComment(text); msg != "" {
		h.renderer.Page(w, r, "comment_form", &render.PageData{
			Title: "Edit comment",
			Data: map[string]any{
				"Text":   text,
				"Action": commentActionURL(comment, "edit"),
				"Errors": []string{msg},
			},
		})
		return
	}

	if err := h.commentStore.UpdateText(comment.ID, text); err != nil {
		slog.Error("update comment failed", "error", err, "id", comment.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+comment.PostID.String(), http.StatusSeeOther)
}

// DeletePage renders the delete confirmation page for a comment.
func (h *Comments) DeletePage(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.findOwnComment(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title: "Delete comment",
		Data: map[string]any{
			"Heading":   "Delete comment",
			"Prompt":    "This will permanently delete your comment.",
			"Excerpt":   comment.Text,
			"Action":    commentActionURL(comment, "delete"),
			"CancelURL": "/posts/" + comment.PostID.String(),
		},
	})
}

// Delete removes the comment.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.findOwnComment(w, r)
	if !ok {
		return
	}

	if err := h.commentStore.Delete(comment.ID); err != nil {
		slog.Error("delete comment failed", "error", err, "id", comment.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/posts/"+comment.PostID.String(), http.StatusSeeOther)
}

// findOwnComment loads the comment from the URL, checks it belongs to the
// post in the URL, and enforces ownership. It writes the response itself
// (404 or redirect to detail) and returns ok=false when the caller should
// stop.
func (h *Comments) findOwnComment(w http.ResponseWriter, r *http.Request) (*models.Comment, bool) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}
	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	comment, err := h.commentStore.FindByID(commentID)
	if err != nil {
		slog.Error("find comment failed", "error", err, "id", commentID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if comment == nil || comment.PostID != postID {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID != comment.AuthorID {
		http.Redirect(w, r, "/posts/"+comment.PostID.String(), http.StatusSeeOther)
		return nil, false
	}

	return comment, true
}

// commentActionURL builds the edit or delete URL for a comment.
func commentActionURL(c *models.Comment, action string) string {
	return "/posts/" + c.PostID.String() + "/comments/" + c.ID.String() + "/" + action
}
