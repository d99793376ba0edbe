package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxTitleLen    = 256
	maxTextLen     = 100_000
	maxCommentLen  = 10_000
	maxUsernameLen = 150
	minPasswordLen = 8
)

// usernamePattern matches the allowed username charset: letters, digits,
// and @ . + - _ characters.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)

// validatePost checks post form inputs and returns a list of error messages.
func validatePost(title, text string) []string {
	var errs []string
	title = strings.TrimSpace(title)
	if title == "" {
		errs = append(errs, "Title is required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		errs = append(errs, "Title is too long (max 256 characters).")
	}
	if strings.TrimSpace(text) == "" {
		errs = append(errs, "Text is required.")
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		errs = append(errs, "Text is too long (max 100,000 characters).")
	}
	return errs
}

// validateComment checks a comment body and returns the first error found.
func validateComment(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Comment text is required."
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "Comment is too long (max 10,000 characters)."
	}
	return ""
}

// validateUsername checks the username charset and length.
func validateUsername(username string) string {
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 150 characters)."
	}
	if !usernamePattern.MatchString(username) {
		return "Username may only contain letters, digits and @ . + - _ characters."
	}
	return ""
}

// validateRegistration checks the sign-up form and returns a list of error
// messages.
func validateRegistration(username, email, password, password2 string) []string {
	var errs []string
	if msg := validateUsername(username); msg != "" {
		errs = append(errs, msg)
	}
	if !strings.Contains(email, "@") {
		errs = append(errs, "A valid email address is required.")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		errs = append(errs, "Password must be at least 8 characters.")
	}
	if password != password2 {
		errs = append(errs, "Passwords do not match.")
	}
	return errs
}
