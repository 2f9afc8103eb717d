// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/models"
)

// fittedSnapshot builds a snapshot over the given posts through a
// throwaway engine with deterministic settings.
func fittedSnapshot(t *testing.T, posts []models.Post) *snapshot {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Analyzer.MinDocFreq = 1
	cfg.Scoring.Jitter = 0

	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Fit(context.Background(), posts); err != nil {
		t.Fatalf("fit: %v", err)
	}
	return e.snap.Load()
}

func taggedCorpus() []models.Post {
	return []models.Post{
		{ID: 1, Tags: models.TagList{"cooking", "pasta"}},
		{ID: 2, Tags: models.TagList{"cooking", "pizza"}},
		{ID: 3, Tags: models.TagList{"golang", "backend"}},
	}
}

func TestBuildProfileNormalization(t *testing.T) {
	snap := fittedSnapshot(t, taggedCorpus())

	interactions := []models.Interaction{
		{UserID: 1, PostID: 1, Type: models.InteractionLike},
		{UserID: 1, PostID: 3, Type: models.InteractionView},
	}
	p := buildProfile(interactions, snap)

	if p.TotalInteractions != 2 {
		t.Errorf("TotalInteractions = %d, want 2", p.TotalInteractions)
	}

	// Like weight 3 over 2 tags, view weight 1 over 2 tags: total 8.
	// Each liked tag carries 3/8, each viewed tag 1/8.
	for _, tag := range []string{"cooking", "pasta"} {
		if got := p.TagWeights[tag]; math.Abs(got-0.375) > 1e-9 {
			t.Errorf("TagWeights[%s] = %v, want 0.375", tag, got)
		}
	}
	for _, tag := range []string{"golang", "backend"} {
		if got := p.TagWeights[tag]; math.Abs(got-0.125) > 1e-9 {
			t.Errorf("TagWeights[%s] = %v, want 0.125", tag, got)
		}
	}

	var sum float64
	for _, w := range p.TagWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("tag weights sum to %v, want 1.0", sum)
	}
}

func TestBuildProfileUnknownPost(t *testing.T) {
	snap := fittedSnapshot(t, taggedCorpus())

	p := buildProfile([]models.Interaction{
		{UserID: 1, PostID: 999, Type: models.InteractionShare},
	}, snap)

	if len(p.TagWeights) != 0 {
		t.Errorf("interaction with unknown post should add no tag weight, got %v", p.TagWeights)
	}
	if p.InteractionCounts[models.InteractionShare] != 1 {
		t.Error("interaction histogram should still count the event")
	}
}

func TestBuildProfileNilSnapshot(t *testing.T) {
	p := buildProfile([]models.Interaction{
		{UserID: 1, PostID: 1, Type: models.InteractionLike},
	}, nil)

	if p.TotalInteractions != 1 {
		t.Errorf("TotalInteractions = %d, want 1", p.TotalInteractions)
	}
	if len(p.TagWeights) != 0 {
		t.Errorf("no snapshot means no tag weights, got %v", p.TagWeights)
	}
}

func TestDominantInteractionTieBreak(t *testing.T) {
	tests := []struct {
		name   string
		counts map[models.InteractionType]int
		want   models.InteractionType
	}{
		{
			name:   "clear winner",
			counts: map[models.InteractionType]int{models.InteractionLike: 5, models.InteractionView: 2},
			want:   models.InteractionLike,
		},
		{
			name:   "tie resolves to earlier type",
			counts: map[models.InteractionType]int{models.InteractionLike: 3, models.InteractionShare: 3},
			want:   models.InteractionLike,
		},
		{
			name:   "view wins ties against everything",
			counts: map[models.InteractionType]int{models.InteractionView: 1, models.InteractionComment: 1},
			want:   models.InteractionView,
		},
		{
			name:   "empty histogram",
			counts: map[models.InteractionType]int{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &UserProfile{InteractionCounts: tt.counts}
			if got := p.DominantInteraction(); got != tt.want {
				t.Errorf("DominantInteraction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProfileStoreRecordAndSeen(t *testing.T) {
	snap := fittedSnapshot(t, taggedCorpus())
	store := newProfileStore()

	store.record(models.Interaction{UserID: 7, PostID: 1, Type: models.InteractionLike}, snap)
	store.record(models.Interaction{UserID: 7, PostID: 2, Type: models.InteractionView}, snap)

	p := store.profile(7)
	if p == nil || p.TotalInteractions != 2 {
		t.Fatalf("expected profile with 2 interactions, got %+v", p)
	}

	seen := store.seenPosts(7)
	if len(seen) != 2 {
		t.Fatalf("expected 2 seen posts, got %v", seen)
	}
	for _, id := range []int64{1, 2} {
		if _, ok := seen[id]; !ok {
			t.Errorf("post %d missing from seen set", id)
		}
	}

	if store.profile(8) != nil {
		t.Error("unknown user should have nil profile")
	}
	if store.count() != 1 {
		t.Errorf("count() = %d, want 1", store.count())
	}
}

func TestTopInterestsOrdering(t *testing.T) {
	p := &UserProfile{TagWeights: map[string]float64{
		"a": 0.2, "b": 0.5, "c": 0.3, "d": 0.5,
	}}

	got := topInterests(p, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 interests, got %d", len(got))
	}
	// Equal weights break alphabetically.
	if got[0].Tag != "b" || got[1].Tag != "d" || got[2].Tag != "c" {
		t.Errorf("unexpected order: %v", got)
	}
}
