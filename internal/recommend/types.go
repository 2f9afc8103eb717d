// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"context"
	"time"

	"github.com/chari00001/redit-feed/internal/models"
)

// DataProvider is the interface to the backing store for posts and the
// interaction log. It is implemented by the database layer; the engine
// never imports it directly to keep the core free of storage concerns.
type DataProvider interface {
	// FetchPosts returns all visible posts with tags already decoded.
	FetchPosts(ctx context.Context) ([]models.Post, error)

	// FetchPostsSince returns posts created at or after the given time.
	FetchPostsSince(ctx context.Context, since time.Time) ([]models.Post, error)

	// FetchInteractions returns the interaction log, optionally filtered
	// to one user. A userID <= 0 returns all interactions.
	FetchInteractions(ctx context.Context, userID int64) ([]models.Interaction, error)

	// AppendInteraction appends one event to the interaction log.
	AppendInteraction(ctx context.Context, in models.Interaction) error
}

// UserProfile is a user's derived interest profile: normalized tag
// affinities, topic affinities, and an interaction-type histogram. It is
// always recomputed from the interaction log, never mutated piecemeal.
type UserProfile struct {
	// TagWeights maps tag → affinity, normalized by the total accumulated
	// interaction weight. All values are non-negative.
	TagWeights map[string]float64 `json:"tag_weights"`

	// TopicWeights maps topic id → normalized affinity.
	TopicWeights map[int]float64 `json:"topic_weights"`

	// TopicCounts maps topic id → raw number of interactions with posts
	// in that topic. Pre-aggregated here so the diversity bonus is O(1)
	// per candidate instead of a rescan of the interaction history.
	TopicCounts map[int]int `json:"topic_counts"`

	// InteractionCounts is the per-type interaction histogram.
	InteractionCounts map[models.InteractionType]int `json:"interaction_counts"`

	// TotalInteractions is the number of events behind this profile.
	TotalInteractions int `json:"total_interactions"`
}

// DominantInteraction returns the user's most frequent interaction type.
// Ties resolve in fixed view → like → comment → share order so the result
// is deterministic.
func (p *UserProfile) DominantInteraction() models.InteractionType {
	order := []models.InteractionType{
		models.InteractionView,
		models.InteractionLike,
		models.InteractionComment,
		models.InteractionShare,
	}

	var best models.InteractionType
	bestCount := 0
	for _, t := range order {
		if c := p.InteractionCounts[t]; c > bestCount {
			best = t
			bestCount = c
		}
	}
	return best
}

// Recommendation is one ranked feed entry. Ephemeral: computed per
// request, never persisted.
type Recommendation struct {
	// Post is the recommended post.
	Post models.Post `json:"post"`

	// Score is the composite recommendation score.
	Score float64 `json:"score"`

	// Reason is a human-readable explanation for the recommendation.
	Reason string `json:"reason"`
}

// SimilarPost pairs a post with its similarity to a reference post.
type SimilarPost struct {
	Post models.Post `json:"post"`

	// Similarity is the cosine similarity in [0, 1] for vector-based
	// lookups, or zero for topic-mate lookups where no score applies.
	Similarity float64 `json:"similarity,omitempty"`
}

// PostAnalysis is the derived content analysis for one post.
type PostAnalysis struct {
	PostID          int64    `json:"post_id"`
	OriginalTags    []string `json:"original_tags"`
	ContentKeywords []string `json:"content_keywords"`
	TopicID         int      `json:"topic_id"`
	TopicKeywords   []string `json:"topic_keywords"`
	EnhancedTags    []string `json:"enhanced_tags"`
}

// TopicInfo summarizes one topic cluster.
type TopicInfo struct {
	TopicID   int      `json:"topic_id"`
	Keywords  []string `json:"keywords"`
	PostCount int      `json:"post_count"`
}

// TopicsSummary summarizes all topic clusters.
type TopicsSummary struct {
	Topics             []TopicInfo `json:"topics"`
	TotalTopics        int         `json:"total_topics"`
	TotalPostsAnalyzed int         `json:"total_posts_analyzed"`
}

// InterestEntry is one entry of a user's ranked interest list.
type InterestEntry struct {
	Tag    string  `json:"tag"`
	Weight float64 `json:"weight"`
}

// ProfileSummary is the externally visible view of a user profile.
type ProfileSummary struct {
	UserID            int64                              `json:"user_id"`
	Status            string                             `json:"status"`
	TotalInteractions int                                `json:"total_interactions,omitempty"`
	ProfileStrength   float64                            `json:"profile_strength,omitempty"`
	InteractionCounts map[models.InteractionType]int     `json:"interaction_summary,omitempty"`
	TopInterests      []InterestEntry                    `json:"top_interests,omitempty"`
}

// Profile summary status values.
const (
	ProfileStatusFound   = "profile_found"
	ProfileStatusNewUser = "new_user"
)

// Status describes the engine's fitted state.
type Status struct {
	Fitted       bool      `json:"fitted"`
	ModelVersion int       `json:"model_version"`
	FittedAt     time.Time `json:"fitted_at,omitempty"`
	PostCount    int       `json:"post_count"`
	FeatureCount int       `json:"feature_count"`
	TopicCount   int       `json:"topic_count"`
	UserCount    int       `json:"user_count"`
}
