// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"fmt"
	"math/rand"

	"github.com/chari00001/redit-feed/internal/models"
)

// scorer computes composite recommendation scores for one request. It
// carries the request's random source, so concurrent requests never share
// RNG state.
type scorer struct {
	cfg  ScoringConfig
	snap *snapshot
	rng  *rand.Rand
}

// score computes the composite score of one candidate post for a profile.
//
// The blend is tag match, topic diversity, interaction-type preference,
// recency and popularity under the configured weights, plus a bounded
// uniform jitter for tie-breaking and exploration.
func (s *scorer) score(post *models.Post, profile *UserProfile) float64 {
	tags := s.snap.tags(post.ID)

	// Tag match: average affinity of matched tags, doubled, minus a small
	// penalty proportional to the share of tags the user has no history
	// with.
	var personalization float64
	matched, unknown := 0, 0
	var matchSum float64
	for _, tag := range tags {
		if w, ok := profile.TagWeights[tag]; ok {
			matchSum += w
			matched++
		} else {
			unknown++
		}
	}
	if matched > 0 {
		personalization += (matchSum / float64(matched)) * 2.0
	}
	if len(tags) > 0 {
		personalization -= float64(unknown) / float64(len(tags)) * 0.1
	}

	// Topic diversity: boost topics the user has rarely touched.
	var diversity float64
	if topic := s.snap.topic(post.ID); topic >= 0 {
		switch n := profile.TopicCounts[topic]; {
		case n < 2:
			diversity = 0.3
		case n < 5:
			diversity = 0.1
		}
	}

	// Interaction-type preference: match the post's character to how the
	// user usually engages.
	var interaction float64
	switch profile.DominantInteraction() {
	case models.InteractionComment:
		if len(post.Content) > 100 {
			interaction = 0.2
		}
	case models.InteractionLike:
		if post.LikesCount > 5 {
			interaction = 0.15
		}
	case models.InteractionShare:
		if len(tags) > 2 {
			interaction = 0.1
		}
	}

	// Recency: a flat nudge for posts carrying a publish time.
	var recency float64
	if !post.CreatedAt.IsZero() {
		recency = 0.05
	}

	// Popularity, deliberately near-irrelevant in the blend.
	var popularity float64
	if post.HasEngagement() {
		popularity = (float64(post.LikesCount)*0.2 +
			float64(post.CommentsCount)*0.3 +
			float64(post.SharesCount)*0.4 +
			float64(post.ViewsCount)*0.1) / 50.0
	}

	jitter := (s.rng.Float64()*2 - 1) * s.cfg.Jitter

	return personalization*s.cfg.TagMatchWeight +
		diversity*s.cfg.DiversityWeight +
		interaction*s.cfg.InteractionWeight +
		recency*s.cfg.RecencyWeight +
		popularity*s.cfg.PopularityWeight +
		jitter
}

// reason explains a recommendation in feed-facing terms: the strongest
// matched interest if there is one, then score strength, then the post's
// leading tag.
func (s *scorer) reason(post *models.Post, profile *UserProfile, score float64) string {
	tags := s.snap.tags(post.ID)

	var bestTag string
	var bestWeight float64
	for _, tag := range tags {
		if w, ok := profile.TagWeights[tag]; ok && (bestTag == "" || w > bestWeight) {
			bestTag, bestWeight = tag, w
		}
	}

	switch {
	case bestTag != "":
		return fmt.Sprintf("matches your interest in '%s'", bestTag)
	case score > 0.5:
		return "high-scoring content"
	case len(tags) > 0:
		return fmt.Sprintf("about '%s'", tags[0])
	default:
		return "picked for you"
	}
}
