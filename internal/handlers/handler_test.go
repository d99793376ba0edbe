// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"blogium/internal/database"
	"blogium/internal/middleware"
	"blogium/internal/models"
	"blogium/internal/render"
	"blogium/internal/session"
	"blogium/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogium")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogium")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Renderer      *render.Renderer
	Sessions      *session.Store
	UserStore     *store.UserStore
	PostStore     *store.PostStore
	CategoryStore *store.CategoryStore
	LocationStore *store.LocationStore
	CommentStore  *store.CommentStore
	Public        *Public
	Posts         *Posts
	Comments      *Comments
	Auth          *Auth
}

// newTestEnv creates a complete test environment with all handler
// dependencies. S3 storage is left unconfigured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db, 10)
	categoryStore := store.NewCategoryStore(db)
	locationStore := store.NewLocationStore(db)
	commentStore := store.NewCommentStore(db)

	public := NewPublic(renderer, postStore, categoryStore, userStore, commentStore, nil)
	posts := NewPosts(renderer, postStore, categoryStore, locationStore, nil)
	comments := NewComments(renderer, postStore, commentStore, public)
	auth := NewAuth(renderer, sessions, userStore)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Renderer:      renderer,
		Sessions:      sessions,
		UserStore:     userStore,
		PostStore:     postStore,
		CategoryStore: categoryStore,
		LocationStore: locationStore,
		CommentStore:  commentStore,
		Public:        public,
		Posts:         posts,
		Comments:      comments,
		Auth:          auth,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// sessionFor builds session data for a user.
func sessionFor(user *models.User) *session.Data {
	return &session.Data{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.FullName(),
		CreatedAt:   time.Now(),
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParams adds chi URL parameters and an optional session to a
// request. sess may be nil.
func withChiURLParams(r *http.Request, params map[string]string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return r.WithContext(ctx)
}

// testUser creates a user with a unique username and registers cleanup.
func testUser(t *testing.T, env *testEnv) *models.User {
	t.Helper()

	username := "h-" + uuid.NewString()[:8]
	user, err := env.UserStore.Create(username, username+"@example.com", "secret-password", "Test", "Author")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

// testCategory creates a published category with a unique slug.
func testCategory(t *testing.T, env *testEnv) *models.Category {
	t.Helper()

	slug := "h-cat-" + uuid.NewString()[:8]
	cat, err := env.CategoryStore.Create(&models.Category{
		Title:       "Handler Test Category",
		Description: "Category used by handler tests.",
		Slug:        slug,
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM categories WHERE id = $1", cat.ID)
	})
	return cat
}

// testPost creates a post and registers cleanup. pubOffset shifts PubDate
// relative to now; negative means already published.
func testPost(t *testing.T, env *testEnv, author *models.User, category *models.Category, published bool, pubOffset time.Duration) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       "Handler test post " + uuid.NewString()[:8],
		Text:        "Body of the handler test post.",
		PubDate:     time.Now().Add(pubOffset),
		IsPublished: published,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}

	created, err := env.PostStore.Create(post)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE id = $1", created.ID)
	})
	return created
}

// testComment creates a comment on a post and registers cleanup.
func testComment(t *testing.T, env *testEnv, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()

	comment, err := env.CommentStore.Create(&models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("create test comment: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM comments WHERE id = $1", comment.ID)
	})
	return comment
}
