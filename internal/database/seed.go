package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"blogium/internal/slug"
)

// Seed populates the database with initial development data: a demo author,
// a published category and location, and a couple of posts. It is a no-op
// when users already exist.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var authorID string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash, first_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "demo", "demo@blogium.local", string(hash), "Demo").Scan(&authorID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	slugTaken := func(s string) bool {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM categories WHERE slug = $1", s).Scan(&n); err != nil {
			return true
		}
		return n > 0
	}

	categoryTitle := "General"
	var categoryID string
	err = db.QueryRow(`
		INSERT INTO categories (title, description, slug)
		VALUES ($1, $2, $3)
		RETURNING id
	`, categoryTitle, "Everything that does not fit anywhere else.",
		slug.Unique(categoryTitle, slugTaken)).Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	var locationID string
	err = db.QueryRow(`
		INSERT INTO locations (name) VALUES ($1) RETURNING id
	`, "Nowhere in particular").Scan(&locationID)
	if err != nil {
		return fmt.Errorf("seed insert location: %w", err)
	}

	// One post already visible, one scheduled for tomorrow.
	_, err = db.Exec(`
		INSERT INTO posts (title, text, pub_date, author_id, category_id, location_id)
		VALUES
			($1, $2, NOW() - INTERVAL '1 hour', $3, $4, $5),
			($6, $7, NOW() + INTERVAL '1 day', $3, $4, NULL)
	`,
		"Hello, world", "Welcome to your new blog. This post is already live.",
		authorID, categoryID, locationID,
		"Scheduled post", "This post has a future publication date and stays hidden until then.",
	)
	if err != nil {
		return fmt.Errorf("seed insert posts: %w", err)
	}

	slog.Info("database seeded with demo data",
		"username", "demo",
		"password", "demo",
	)

	return nil
}
