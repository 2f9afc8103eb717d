// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/chari00001/redit-feed/internal/models"
)

func noJitterScorer(snap *snapshot) *scorer {
	cfg := DefaultConfig().Scoring
	cfg.Jitter = 0
	return &scorer{cfg: cfg, snap: snap, rng: rand.New(rand.NewSource(1))}
}

func TestScorePrefersMatchingTags(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Tags: models.TagList{"ai", "ml"}},
		{ID: 2, Tags: models.TagList{"cooking", "pasta"}},
		{ID: 3, Tags: models.TagList{"gardening"}},
	}
	snap := fittedSnapshot(t, posts)
	sc := noJitterScorer(snap)

	profile := &UserProfile{
		TagWeights:        map[string]float64{"ai": 0.6, "ml": 0.4},
		TopicCounts:       map[int]int{},
		InteractionCounts: map[models.InteractionType]int{models.InteractionView: 3},
	}

	aiScore := sc.score(&snap.posts[0], profile)
	cookingScore := sc.score(&snap.posts[1], profile)

	if aiScore <= cookingScore {
		t.Errorf("matching post scored %v, non-matching %v; want matching higher", aiScore, cookingScore)
	}
}

func TestScoreMonotonicInTagAffinity(t *testing.T) {
	posts := []models.Post{{ID: 1, Tags: models.TagList{"ai"}}}
	snap := fittedSnapshot(t, posts)
	sc := noJitterScorer(snap)

	// Raising the affinity of a post's only tag must never lower its
	// composite score.
	prev := math.Inf(-1)
	for w := 0.1; w <= 1.0+1e-9; w += 0.1 {
		profile := &UserProfile{
			TagWeights:        map[string]float64{"ai": w},
			TopicCounts:       map[int]int{},
			InteractionCounts: map[models.InteractionType]int{},
		}
		got := sc.score(&snap.posts[0], profile)
		if got < prev {
			t.Fatalf("score dropped from %v to %v when affinity rose to %.1f", prev, got, w)
		}
		prev = got
	}
}

func TestScoreComponents(t *testing.T) {
	now := time.Now()
	posts := []models.Post{
		{ID: 1, Tags: models.TagList{"ai"}, CreatedAt: now},
		{ID: 2, Tags: models.TagList{"ai"}},
	}
	snap := fittedSnapshot(t, posts)
	sc := noJitterScorer(snap)

	profile := &UserProfile{
		TagWeights:        map[string]float64{"ai": 0.5},
		TopicCounts:       map[int]int{},
		InteractionCounts: map[models.InteractionType]int{},
	}

	// Identical posts except post 1 carries a publish time: recency is a
	// flat bonus under the recency weight.
	withTime := sc.score(&snap.posts[0], profile)
	without := sc.score(&snap.posts[1], profile)
	wantDelta := 0.05 * sc.cfg.RecencyWeight
	if delta := withTime - without; delta < wantDelta-1e-9 || delta > wantDelta+1e-9 {
		t.Errorf("recency delta = %v, want %v", delta, wantDelta)
	}
}

func TestScoreInteractionTypeBonus(t *testing.T) {
	longBody := make([]byte, 150)
	for i := range longBody {
		longBody[i] = 'x'
	}

	tests := []struct {
		name   string
		counts map[models.InteractionType]int
		post   models.Post
		bonus  float64
	}{
		{
			name:   "commenter gets long-form boost",
			counts: map[models.InteractionType]int{models.InteractionComment: 4},
			post:   models.Post{ID: 1, Content: string(longBody)},
			bonus:  0.2,
		},
		{
			name:   "liker gets liked-post boost",
			counts: map[models.InteractionType]int{models.InteractionLike: 4},
			post:   models.Post{ID: 1, LikesCount: 10},
			bonus:  0.15,
		},
		{
			name:   "sharer gets tag-rich boost",
			counts: map[models.InteractionType]int{models.InteractionShare: 4},
			post:   models.Post{ID: 1, Tags: models.TagList{"a", "b", "c"}},
			bonus:  0.1,
		},
		{
			name:   "viewer gets nothing",
			counts: map[models.InteractionType]int{models.InteractionView: 4},
			post:   models.Post{ID: 1, Content: string(longBody), LikesCount: 10},
			bonus:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := fittedSnapshot(t, []models.Post{tt.post})
			sc := noJitterScorer(snap)

			with := &UserProfile{
				TagWeights:        map[string]float64{},
				TopicCounts:       map[int]int{},
				InteractionCounts: tt.counts,
			}
			without := &UserProfile{
				TagWeights:        map[string]float64{},
				TopicCounts:       map[int]int{},
				InteractionCounts: map[models.InteractionType]int{},
			}

			delta := sc.score(&snap.posts[0], with) - sc.score(&snap.posts[0], without)
			want := tt.bonus * sc.cfg.InteractionWeight
			if delta < want-1e-9 || delta > want+1e-9 {
				t.Errorf("interaction bonus delta = %v, want %v", delta, want)
			}
		})
	}
}

func TestScoreJitterBounded(t *testing.T) {
	posts := []models.Post{{ID: 1, Tags: models.TagList{"x"}}}
	snap := fittedSnapshot(t, posts)

	cfg := DefaultConfig().Scoring
	base := noJitterScorer(snap)
	jittered := &scorer{cfg: cfg, snap: snap, rng: rand.New(rand.NewSource(99))}

	profile := &UserProfile{
		TagWeights:        map[string]float64{"x": 0.5},
		TopicCounts:       map[int]int{},
		InteractionCounts: map[models.InteractionType]int{},
	}

	want := base.score(&snap.posts[0], profile)
	for i := 0; i < 200; i++ {
		got := jittered.score(&snap.posts[0], profile)
		if diff := got - want; diff > cfg.Jitter+1e-9 || diff < -cfg.Jitter-1e-9 {
			t.Fatalf("jitter excursion %v exceeds +/-%v", diff, cfg.Jitter)
		}
	}
}

func TestReason(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Tags: models.TagList{"ai", "ml"}},
		{ID: 2, Tags: models.TagList{"gardening"}},
		{ID: 3},
	}
	snap := fittedSnapshot(t, posts)
	sc := noJitterScorer(snap)

	profile := &UserProfile{
		TagWeights:        map[string]float64{"ml": 0.7, "ai": 0.3},
		TopicCounts:       map[int]int{},
		InteractionCounts: map[models.InteractionType]int{},
	}

	tests := []struct {
		name  string
		post  *models.Post
		score float64
		want  string
	}{
		{"best matched interest", &snap.posts[0], 0.2, "matches your interest in 'ml'"},
		{"high score without match", &snap.posts[1], 0.8, "high-scoring content"},
		{"first tag fallback", &snap.posts[1], 0.1, "about 'gardening'"},
		{"no tags at all", &snap.posts[2], 0.1, "picked for you"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sc.reason(tt.post, profile, tt.score); got != tt.want {
				t.Errorf("reason() = %q, want %q", got, tt.want)
			}
		})
	}
}
