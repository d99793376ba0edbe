// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"
)

// TestListHome_VisibilityFilter builds three posts under a published
// category — published/yesterday, published/tomorrow, unpublished/yesterday —
// and verifies that only the first one appears in the home feed.
func TestListHome_VisibilityFilter(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	cat := testCategory(t, db, true)

	visible := testPost(t, db, author, cat, true, -24*time.Hour)
	future := testPost(t, db, author, cat, true, 24*time.Hour)
	draft := testPost(t, db, author, cat, false, -24*time.Hour)

	// Large page size so every post in the test database fits on page one.
	page, err := NewPostStore(db, 10000).ListHome(1)
	if err != nil {
		t.Fatalf("ListHome: %v", err)
	}

	if !pageContains(page, visible.ID) {
		t.Errorf("home feed missing published past-dated post")
	}
	if pageContains(page, future.ID) {
		t.Errorf("home feed contains future-dated post")
	}
	if pageContains(page, draft.ID) {
		t.Errorf("home feed contains unpublished post")
	}
}

// TestListHome_UnpublishedCategoryHidesPosts verifies that a published post
// under an unpublished category is filtered out, and that a post with no
// category at all never shows publicly.
func TestListHome_UnpublishedCategoryHidesPosts(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	hiddenCat := testCategory(t, db, false)

	underHidden := testPost(t, db, author, hiddenCat, true, -time.Hour)
	uncategorized := testPost(t, db, author, nil, true, -time.Hour)

	page, err := NewPostStore(db, 10000).ListHome(1)
	if err != nil {
		t.Fatalf("ListHome: %v", err)
	}

	if pageContains(page, underHidden.ID) {
		t.Errorf("home feed contains post under unpublished category")
	}
	if pageContains(page, uncategorized.ID) {
		t.Errorf("home feed contains post without a category")
	}
}

// TestListByCategory verifies the category feed returns only visible posts
// for that slug, and that the category lookup treats unpublished categories
// as not found.
func TestListByCategory(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	cat := testCategory(t, db, true)
	otherCat := testCategory(t, db, true)

	mine := testPost(t, db, author, cat, true, -time.Hour)
	other := testPost(t, db, author, otherCat, true, -time.Hour)
	draft := testPost(t, db, author, cat, false, -time.Hour)

	page, err := NewPostStore(db, 10000).ListByCategory(cat.Slug, 1)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}

	if !pageContains(page, mine.ID) {
		t.Errorf("category feed missing its visible post")
	}
	if pageContains(page, other.ID) {
		t.Errorf("category feed contains another category's post")
	}
	if pageContains(page, draft.ID) {
		t.Errorf("category feed contains unpublished post")
	}
}

// TestFindPublishedBySlug_UnpublishedIsNotFound covers the category-404
// rule: an unpublished category behaves exactly like a missing one, even
// when posts under it are individually published.
func TestFindPublishedBySlug_UnpublishedIsNotFound(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	hiddenCat := testCategory(t, db, false)
	testPost(t, db, author, hiddenCat, true, -time.Hour)

	cats := NewCategoryStore(db)

	got, err := cats.FindPublishedBySlug(hiddenCat.Slug)
	if err != nil {
		t.Fatalf("FindPublishedBySlug: %v", err)
	}
	if got != nil {
		t.Errorf("unpublished category resolved as published")
	}

	// The unfiltered lookup still sees it.
	any, err := cats.FindBySlug(hiddenCat.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if any == nil {
		t.Errorf("category should exist regardless of publication state")
	}
}

// TestListByAuthor_OwnerSeesEverything verifies the profile asymmetry:
// the owner's view bypasses the visibility filter entirely, while other
// viewers only get publicly visible posts.
func TestListByAuthor_OwnerSeesEverything(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	cat := testCategory(t, db, true)

	visible := testPost(t, db, author, cat, true, -time.Hour)
	future := testPost(t, db, author, cat, true, time.Hour)
	draft := testPost(t, db, author, cat, false, -time.Hour)

	posts := NewPostStore(db, 10000)

	owner, err := posts.ListByAuthor(author.Username, true, 1)
	if err != nil {
		t.Fatalf("ListByAuthor owner: %v", err)
	}
	if !pageContains(owner, visible.ID) {
		t.Errorf("owner view missing visible post")
	}
	if !pageContains(owner, future.ID) {
		t.Errorf("owner view missing future-dated post")
	}
	if !pageContains(owner, draft.ID) {
		t.Errorf("owner view missing unpublished post")
	}

	guest, err := posts.ListByAuthor(author.Username, false, 1)
	if err != nil {
		t.Fatalf("ListByAuthor guest: %v", err)
	}
	if !pageContains(guest, visible.ID) {
		t.Errorf("guest view missing visible post")
	}
	if pageContains(guest, future.ID) || pageContains(guest, draft.ID) {
		t.Errorf("guest view contains hidden posts")
	}
}

// TestListByAuthor_Pagination verifies page math and ordering: newest
// publication date first, fixed page size, correct total/has-next flags.
func TestListByAuthor_Pagination(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	cat := testCategory(t, db, true)

	for i := 0; i < 12; i++ {
		testPost(t, db, author, cat, true, -time.Duration(i+1)*time.Hour)
	}

	posts := NewPostStore(db, 5)

	page1, err := posts.ListByAuthor(author.Username, false, 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if page1.TotalCount != 12 {
		t.Errorf("TotalCount = %d, want 12", page1.TotalCount)
	}
	if page1.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page1.TotalPages)
	}
	if len(page1.Posts) != 5 {
		t.Errorf("page 1 size = %d, want 5", len(page1.Posts))
	}
	if !page1.HasNext() || page1.HasPrev() {
		t.Errorf("page 1 flags: HasNext=%v HasPrev=%v", page1.HasNext(), page1.HasPrev())
	}

	// Ordering: non-increasing pub dates within the page.
	for i := 1; i < len(page1.Posts); i++ {
		if page1.Posts[i].PubDate.After(page1.Posts[i-1].PubDate) {
			t.Errorf("posts not ordered by pub_date descending")
		}
	}

	page3, err := posts.ListByAuthor(author.Username, false, 3)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3.Posts) != 2 {
		t.Errorf("page 3 size = %d, want 2", len(page3.Posts))
	}
	if page3.HasNext() || !page3.HasPrev() {
		t.Errorf("page 3 flags: HasNext=%v HasPrev=%v", page3.HasNext(), page3.HasPrev())
	}
}

// TestFindByID_BypassesVisibility verifies that direct detail lookup
// ignores the visibility filter: an unpublished, future-dated post is
// reachable by its identifier, and repeated reads return the same content.
func TestFindByID_BypassesVisibility(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	hidden := testPost(t, db, author, nil, false, 48*time.Hour)

	posts := NewPostStore(db, 10)

	first, err := posts.FindByID(hidden.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if first == nil {
		t.Fatalf("hidden post not reachable by ID")
	}

	second, err := posts.FindByID(hidden.ID)
	if err != nil {
		t.Fatalf("second FindByID: %v", err)
	}
	if second.Title != first.Title || second.Text != first.Text || !second.PubDate.Equal(first.PubDate) {
		t.Errorf("repeated reads returned different content")
	}
}

// TestPostUpdate verifies that editing changes fields without touching
// author or creation time.
func TestPostUpdate(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	cat := testCategory(t, db, true)
	p := testPost(t, db, author, cat, true, -time.Hour)

	posts := NewPostStore(db, 10)

	p.Title = "Edited title"
	p.Text = "edited body"
	p.IsPublished = false
	if err := posts.Update(p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := posts.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "Edited title" || got.Text != "edited body" || got.IsPublished {
		t.Errorf("update not applied: %+v", got)
	}
	if got.AuthorID != author.ID {
		t.Errorf("author changed on update")
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("created_at changed on update")
	}
}

// TestCategoryDelete_NullsPostReference verifies ON DELETE SET NULL: the
// post survives its category's deletion with a nil category reference.
func TestCategoryDelete_NullsPostReference(t *testing.T) {
	db := testDB(t)
	author := testUser(t, db)
	cat := testCategory(t, db, true)
	p := testPost(t, db, author, cat, true, -time.Hour)

	if err := NewCategoryStore(db).Delete(cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := NewPostStore(db, 10).FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatalf("post deleted along with its category")
	}
	if got.CategoryID != nil {
		t.Errorf("category reference not nulled")
	}
}
