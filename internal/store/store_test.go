// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogium/internal/database"
	"blogium/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogium")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogium")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a user with a unique username. Deleting the user in
// cleanup cascades to their posts and comments.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	username := "t-" + uuid.New().String()[:12]
	u, err := NewUserStore(db).Create(username, username+"@test.local", "secret", "Test", "User")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testCategory creates a category with a unique slug and registers cleanup.
func testCategory(t *testing.T, db *sql.DB, published bool) *models.Category {
	t.Helper()

	slug := "t-cat-" + uuid.New().String()[:12]
	c, err := NewCategoryStore(db).Create(&models.Category{
		Title:       "Test category",
		Description: "created by tests",
		Slug:        slug,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testPost creates a post for the given author/category with the given
// publication state and date offset from now.
func testPost(t *testing.T, db *sql.DB, author *models.User, category *models.Category, published bool, pubOffset time.Duration) *models.Post {
	t.Helper()

	var categoryID *uuid.UUID
	if category != nil {
		categoryID = &category.ID
	}
	p, err := NewPostStore(db, 10).Create(&models.Post{
		Title:       "Test post",
		Text:        "post body",
		PubDate:     time.Now().Add(pubOffset),
		IsPublished: published,
		AuthorID:    author.ID,
		CategoryID:  categoryID,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}

// testComment creates a comment on the given post.
func testComment(t *testing.T, db *sql.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()

	c, err := NewCommentStore(db).Create(&models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("create test comment: %v", err)
	}
	return c
}

// pageContains reports whether a feed page contains a post with the given ID.
func pageContains(page *PostPage, id uuid.UUID) bool {
	for _, p := range page.Posts {
		if p.ID == id {
			return true
		}
	}
	return false
}
