package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"blogium/internal/middleware"
	"blogium/internal/render"
	"blogium/internal/session"
	"blogium/internal/store"
)

// Auth groups authentication and account handlers: registration, login,
// logout, and profile editing.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// RegistrationPage renders the sign-up form.
func (a *Auth) RegistrationPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "registration", &render.PageData{
		Title: "Sign Up",
	})
}

// RegistrationSubmit processes the sign-up form and redirects to the login
// page on success.
func (a *Auth) RegistrationSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")
	password2 := r.FormValue("password2")

	rerender := func(errs []string) {
		a.renderer.Page(w, r, "registration", &render.PageData{
			Title: "Sign Up",
			Data: map[string]any{
				"Errors":   errs,
				"Username": username,
				"Email":    email,
			},
		})
	}

	if errs := validateRegistration(username, email, password, password2); len(errs) > 0 {
		rerender(errs)
		return
	}

	// Username must be free.
	existing, err := a.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("registration lookup failed", "error", err)
		rerender([]string{"An unexpected error occurred. Please try again."})
		return
	}
	if existing != nil {
		rerender([]string{"That username is already taken."})
		return
	}

	if _, err := a.userStore.Create(username, email, password, "", ""); err != nil {
		slog.Error("registration create failed", "error", err)
		rerender([]string{"Could not create the account. Please try again."})
		return
	}

	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// LoginPage renders the login form. Logged-in users are sent to the feed.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := a.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Sign In",
			Data:  map[string]any{"Error": "An unexpected error occurred.", "Username": username},
		})
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Sign In",
			Data:  map[string]any{"Error": "Invalid username or password.", "Username": username},
		})
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.FullName(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and redirects to the feed.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ProfileEditPage renders the profile form for the logged-in user.
func (a *Auth) ProfileEditPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("profile lookup failed", "error", err, "id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "profile_form", &render.PageData{
		Title: "Edit profile",
		Data: map[string]any{
			"FirstName": user.FirstName,
			"LastName":  user.LastName,
			"Email":     user.Email,
		},
	})
}

// ProfileEditSubmit saves the profile form. The username is not editable;
// it identifies the profile URL.
func (a *Auth) ProfileEditSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("profile lookup failed", "error", err, "id", sess.UserID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	email := r.FormValue("email")

	rerender := func(errs []string) {
		a.renderer.Page(w, r, "profile_form", &render.PageData{
			Title: "Edit profile",
			Data: map[string]any{
				"FirstName": firstName,
				"LastName":  lastName,
				"Email":     email,
				"Errors":    errs,
			},
		})
	}

	if !strings.Contains(email, "@") {
		rerender([]string{"A valid email address is required."})
		return
	}

	if err := a.userStore.UpdateProfile(user.ID, user.Username, email, firstName, lastName); err != nil {
		slog.Error("profile update failed", "error", err, "id", user.ID)
		rerender([]string{"Could not save the profile. Please try again."})
		return
	}

	// Refresh the display name shown in the nav.
	user.FirstName = firstName
	user.LastName = lastName
	sess.DisplayName = user.FullName()
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Warn("session refresh failed", "error", err)
	}

	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}
