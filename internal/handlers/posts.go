// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/storage"
	"blogium/internal/store"
)

// pubDateLayout is the format used by the datetime-local form input.
const pubDateLayout = "2006-01-02T15:04"

// Posts groups handlers for authoring blog posts. All routes require an
// authenticated session; ownership failures redirect to the post detail
// page instead of erroring.
type Posts struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	locationStore *store.LocationStore
	storageClient *storage.Client
}

// NewPosts creates a new Posts handler group. storageClient may be nil if
// S3 is not configured; the image field is then omitted from the form.
func NewPosts(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, locationStore *store.LocationStore, storageClient *storage.Client) *Posts {
	return &Posts{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		locationStore: locationStore,
		storageClient: storageClient,
	}
}

// postForm holds parsed post form values.
type postForm struct {
	Title       string
	Text        string
	PubDate     time.Time
	CategoryID  *uuid.UUID
	LocationID  *uuid.UUID
	IsPublished bool
	Errors      []string
}

// parsePostForm reads and validates the post form from the request.
func parsePostForm(r *http.Request) *postForm {
	f := &postForm{
		Title:       r.FormValue("title"),
		Text:        r.FormValue("text"),
		IsPublished: r.FormValue("is_published") == "1",
	}

	f.Errors = validatePost(f.Title, f.Text)

	if raw := r.FormValue("pub_date"); raw != "" {
		t, err := time.ParseInLocation(pubDateLayout, raw, time.Local)
		if err != nil {
			f.Errors = append(f.Errors, "Publication date is not valid.")
		} else {
			f.PubDate = t
		}
	} else {
		f.PubDate = time.Now()
	}

	if raw := r.FormValue("category"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.CategoryID = &id
		}
	}
	if raw := r.FormValue("location"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.LocationID = &id
		}
	}

	return f
}

// formData assembles the template data for the post form page.
func (h *Posts) formData(f *postForm, post *models.Post, heading, action string) map[string]any {
	categories, err := h.categoryStore.ListPublished()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	locations, err := h.locationStore.ListPublished()
	if err != nil {
		slog.Error("list locations failed", "error", err)
	}

	data := map[string]any{
		"Heading":        heading,
		"Action":         action,
		"Post":           post,
		"Categories":     categories,
		"Locations":      locations,
		"StorageEnabled": h.storageClient != nil,
	}
	if f != nil {
		data["Title"] = f.Title
		data["Text"] = f.Text
		data["PubDate"] = f.PubDate.Format(pubDateLayout)
		data["IsPublished"] = f.IsPublished
		data["Errors"] = f.Errors
	}
	if post != nil && post.ImageKey != nil && h.storageClient != nil {
		data["ImageURL"] = h.storageClient.FileURL(*post.ImageKey)
	}
	return data
}

// New renders the empty post form.
func (h *Posts) New(w http.ResponseWriter, r *http.Request) {
	f := &postForm{PubDate: time.Now(), IsPublished: true}
	h.renderer.Page(w, r, "post_form", &render.PageData{
		Title: "New post",
		Data:  h.formData(f, nil, "New post", "/posts/new"),
	})
}

// Create handles the new post form submission.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	f := parsePostForm(r)
	if len(f.Errors) > 0 {
		h.renderer.Page(w, r, "post_form", &render.PageData{
			Title: "New post",
			Data:  h.formData(f, nil, "New post", "/posts/new"),
		})
		return
	}

	post := &models.Post{
		Title:       f.Title,
		Text:        f.Text,
		PubDate:     f.PubDate,
		IsPublished: f.IsPublished,
		AuthorID:    sess.UserID,
		CategoryID:  f.CategoryID,
		LocationID:  f.LocationID,
	}

	if key, ok := h.uploadImage(w, r, f, nil, "New post", "/posts/new"); !ok {
		return
	} else if key != "" {
		post.ImageKey = &key
	}

	if _, err := h.postStore.Create(post); err != nil {
		slog.Error("create post failed", "error", err)
		f.Errors = append(f.Errors, "Could not save the post. Please try again.")
		h.renderer.Page(w, r, "post_form", &render.PageData{
			Title: "New post",
			Data:  h.formData(f, nil, "New post", "/posts/new"),
		})
		return
	}

	http.Redirect(w, r, "/profile/"+sess.Username, http.StatusSeeOther)
}

// EditPage renders the post form pre-filled with the post's current values.
// Non-owners are redirected to the post detail page.
func (h *Posts) EditPage(w http.ResponseWriter, r *http.Request) {
	post, ok := h.findOwnPost(w, r)
	if !ok {
		return
	}

	f := &postForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate,
		CategoryID:  post.CategoryID,
		LocationID:  post.LocationID,
		IsPublished: post.IsPublished,
	}
	action := "/posts/" + post.ID.String() + "/edit"
	h.renderer.Page(w, r, "post_form", &render.PageData{
		Title: "Edit post",
		Data:  h.formData(f, post, "Edit post", action),
	})
}

// Update handles the edit form submission. Author and creation time are
// never touched.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.findOwnPost(w, r)
	if !ok {
		return
	}
	action := "/posts/" + post.ID.String() + "/edit"

	f := parsePostForm(r)
	if len(f.Errors) > 0 {
		h.renderer.Page(w, r, "post_form", &render.PageData{
			Title: "Edit post",
			Data:  h.formData(f, post, "Edit post", action),
		})
		return
	}

	oldImageKey := post.ImageKey
	post.Title = f.Title
	post.Text = f.Text
	post.PubDate = f.PubDate
	post.IsPublished = f.IsPublished
	post.CategoryID = f.CategoryID
	post.LocationID = f.LocationID

	if key, ok := h.uploadImage(w, r, f, post, "Edit post", action); !ok {
		return
	} else if key != "" {
		post.ImageKey = &key
	}

	if err := h.postStore.Update(post); err != nil {
		slog.Error("update post failed", "error", err, "id", post.ID)
		f.Errors = append(f.Errors, "Could not save the post. Please try again.")
		h.renderer.Page(w, r, "post_form", &render.PageData{
			Title: "Edit post",
			Data:  h.formData(f, post, "Edit post", action),
		})
		return
	}

	// Replaced image: delete the old object once the row points elsewhere.
	if oldImageKey != nil && post.ImageKey != nil && *oldImageKey != *post.ImageKey && h.storageClient != nil {
		if err := h.storageClient.Delete(r.Context(), *oldImageKey); err != nil {
			slog.Warn("delete replaced image failed", "error", err, "key", *oldImageKey)
		}
	}

	http.Redirect(w, r, "/posts/"+post.ID.String(), http.StatusSeeOther)
}

// DeletePage renders the delete confirmation page.
func (h *Posts) DeletePage(w http.ResponseWriter, r *http.Request) {
	post, ok := h.findOwnPost(w, r)
	if !ok {
		return
	}

	h.renderer.Page(w, r, "confirm_delete", &render.PageData{
		Title: "Delete post",
		Data: map[string]any{
			"Heading":   "Delete post",
			"Prompt":    "This will permanently delete the post and all of its comments.",
			"Excerpt":   post.Title,
			"Action":    "/posts/" + post.ID.String() + "/delete",
			"CancelURL": "/posts/" + post.ID.String(),
		},
	})
}

// Delete removes the post, its comments (by cascade), and its image.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	post, ok := h.findOwnPost(w, r)
	if !ok {
		return
	}

	if err := h.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err, "id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if post.ImageKey != nil && h.storageClient != nil {
		if err := h.storageClient.Delete(r.Context(), *post.ImageKey); err != nil {
			slog.Warn("delete post image failed", "error", err, "key", *post.ImageKey)
		}
	}

	http.Redirect(w, r, "/profile/"+sess.Username, http.StatusSeeOther)
}

// findOwnPost loads the post from the URL and enforces ownership. It writes
// the response itself (404 or redirect to detail) and returns ok=false when
// the caller should stop.
func (h *Posts) findOwnPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	post, err := h.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil {
		h.renderer.NotFound(w, r)
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.UserID != post.AuthorID {
		http.Redirect(w, r, "/posts/"+post.ID.String(), http.StatusSeeOther)
		return nil, false
	}

	return post, true
}

// uploadImage stores an uploaded image, if any, and returns its object key.
// On upload failure it re-renders the form and returns ok=false. A missing
// file is not an error; the empty key means "keep what's there".
func (h *Posts) uploadImage(w http.ResponseWriter, r *http.Request, f *postForm, post *models.Post, heading, action string) (string, bool) {
	if h.storageClient == nil {
		return "", true
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		slog.Error("read image upload failed", "error", err)
		f.Errors = append(f.Errors, "Could not read the uploaded image.")
		h.renderer.Page(w, r, "post_form", &render.PageData{
			Title: heading,
			Data:  h.formData(f, post, heading, action),
		})
		return "", false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key, err := h.storageClient.UploadImage(r.Context(), header.Filename, contentType, file, header.Size)
	if err != nil {
		slog.Error("upload image failed", "error", err)
		f.Errors = append(f.Errors, "Could not upload the image. Please try again.")
		h.renderer.Page(w, r, "post_form", &render.PageData{
			Title: heading,
			Data:  h.formData(f, post, heading, action),
		})
		return "", false
	}

	return key, true
}
