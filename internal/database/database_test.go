// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package database

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/chari00001/redit-feed/internal/config"
	"github.com/chari00001/redit-feed/internal/logging"
	"github.com/chari00001/redit-feed/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: "", MaxMemory: "256MB", Threads: 1}, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateAndFetchPosts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	older := models.Post{
		UserID:    1,
		Title:     "Go ile web servisleri",
		Content:   "HTTP sunucusu yazmak",
		CreatedAt: base,
		Tags:      models.TagList{"golang", "yazılım"},
	}
	newer := models.Post{
		UserID:     2,
		Content:    "Makarna tarifi",
		CreatedAt:  base.Add(time.Hour),
		Tags:       models.TagList{"yemek"},
		LikesCount: 5,
	}
	if err := db.CreatePost(ctx, &older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := db.CreatePost(ctx, &newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}
	if older.ID == 0 || newer.ID == 0 {
		t.Fatalf("ids not assigned: %d, %d", older.ID, newer.ID)
	}

	posts, err := db.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != newer.ID {
		t.Errorf("first post = %d, want newest %d", posts[0].ID, newer.ID)
	}
	if got := posts[1].Tags; len(got) != 2 || got[0] != "golang" || got[1] != "yazılım" {
		t.Errorf("tags = %v, want decoded [golang yazılım]", got)
	}
	if posts[0].LikesCount != 5 {
		t.Errorf("likes = %d, want 5", posts[0].LikesCount)
	}
	if posts[0].Visibility != "public" {
		t.Errorf("visibility = %q, want default public", posts[0].Visibility)
	}
}

func TestCreatePostKeepsExplicitID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := models.Post{ID: 42, UserID: 1, Content: "pinned", CreatedAt: time.Now().UTC()}
	if err := db.CreatePost(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 42 {
		t.Fatalf("id = %d, want 42", p.ID)
	}

	got, err := db.GetPost(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Content != "pinned" {
		t.Fatalf("got %+v, want content 'pinned'", got)
	}
}

func TestGetPostUnknownReturnsNil(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetPost(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestFetchPostsExcludesPrivate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	public := models.Post{UserID: 1, Content: "public post", CreatedAt: now}
	private := models.Post{UserID: 1, Content: "private post", CreatedAt: now, Visibility: "private"}
	for _, p := range []*models.Post{&public, &private} {
		if err := db.CreatePost(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	posts, err := db.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != public.ID {
		t.Fatalf("got %d posts, want only the public one", len(posts))
	}
}

func TestFetchPostsSince(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		p := models.Post{UserID: 1, Content: "post", CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour)}
		if err := db.CreatePost(ctx, &p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	posts, err := db.FetchPostsSince(ctx, base.Add(2*24*time.Hour))
	if err != nil {
		t.Fatalf("fetch since: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2 at or after the cutoff", len(posts))
	}
	for _, p := range posts {
		if p.CreatedAt.Before(base.Add(2 * 24 * time.Hour)) {
			t.Errorf("post %d created %v, before cutoff", p.ID, p.CreatedAt)
		}
	}
}

func TestNullableColumnsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	updated := time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC)
	community := int64(7)
	p := models.Post{
		UserID:      1,
		Content:     "community post",
		CreatedAt:   updated.Add(-time.Hour),
		UpdatedAt:   &updated,
		CommunityID: &community,
	}
	if err := db.CreatePost(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
	}
	if got.CommunityID == nil || *got.CommunityID != community {
		t.Errorf("CommunityID = %v, want %d", got.CommunityID, community)
	}

	bare := models.Post{UserID: 2, Content: "bare", CreatedAt: time.Now().UTC()}
	if err := db.CreatePost(ctx, &bare); err != nil {
		t.Fatalf("create bare: %v", err)
	}
	gotBare, err := db.GetPost(ctx, bare.ID)
	if err != nil {
		t.Fatalf("get bare: %v", err)
	}
	if gotBare.UpdatedAt != nil || gotBare.CommunityID != nil {
		t.Errorf("bare post nullable fields = %v, %v, want nil", gotBare.UpdatedAt, gotBare.CommunityID)
	}
	if len(gotBare.Tags) != 0 {
		t.Errorf("bare post tags = %v, want empty", gotBare.Tags)
	}
}

func TestInteractionLogOrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	events := []models.Interaction{
		{UserID: 1, PostID: 10, Type: models.InteractionView, Timestamp: base},
		{UserID: 2, PostID: 10, Type: models.InteractionLike, Timestamp: base.Add(time.Minute)},
		{UserID: 1, PostID: 11, Type: models.InteractionComment, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, in := range events {
		if err := db.AppendInteraction(ctx, in); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := db.FetchInteractions(ctx, 0)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d interactions, want 3", len(all))
	}
	if all[0].Type != models.InteractionView || all[2].Type != models.InteractionComment {
		t.Errorf("log not in chronological order: %v", all)
	}

	mine, err := db.FetchInteractions(ctx, 1)
	if err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d interactions for user 1, want 2", len(mine))
	}
	for _, in := range mine {
		if in.UserID != 1 {
			t.Errorf("foreign interaction leaked: %+v", in)
		}
	}
}

func TestAppendInteractionsBatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	batch := make([]models.Interaction, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, models.Interaction{
			UserID:    int64(i % 3),
			PostID:    int64(i),
			Type:      models.InteractionView,
			Timestamp: time.Now().UTC(),
		})
	}
	if err := db.AppendInteractions(ctx, batch); err != nil {
		t.Fatalf("batch append: %v", err)
	}
	if err := db.AppendInteractions(ctx, nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}

	n, err := db.CountInteractions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 25 {
		t.Fatalf("count = %d, want 25", n)
	}
}

func TestSeedSampleData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SeedSampleData(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	posts, err := db.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) == 0 {
		t.Fatal("seed produced no posts")
	}
	for _, p := range posts {
		if len(p.Tags) == 0 {
			t.Errorf("seed post %d has no tags", p.ID)
		}
	}
	interactions, err := db.FetchInteractions(ctx, 0)
	if err != nil {
		t.Fatalf("fetch interactions: %v", err)
	}
	if len(interactions) == 0 {
		t.Fatal("seed produced no interactions")
	}

	// Re-seeding a non-empty database is a no-op.
	if err := db.SeedSampleData(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	again, err := db.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("fetch again: %v", err)
	}
	if len(again) != len(posts) {
		t.Fatalf("post count changed after re-seed: %d -> %d", len(posts), len(again))
	}
}
