// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"time"

	"github.com/chari00001/redit-feed/internal/models"
)

// snapshot is one immutable generation of fitted model state. The engine
// publishes it through an atomic pointer; readers hold it for the length
// of a request and never mutate it. A retrain builds a fresh snapshot and
// swaps the pointer.
type snapshot struct {
	version  int
	fittedAt time.Time

	posts []models.Post
	// index maps post id to its row in posts and in the feature matrices.
	index map[int64]int

	tagVec    *TagVectorizer
	tagMatrix [][]float64

	// analyzer is nil when the corpus was too small for content analysis;
	// in that case enhancedTags falls back to the manual tag lists.
	analyzer *ContentAnalyzer

	enhancedTags map[int64][]string
}

// post looks up a post by id.
func (s *snapshot) post(id int64) (models.Post, bool) {
	idx, ok := s.index[id]
	if !ok {
		return models.Post{}, false
	}
	return s.posts[idx], true
}

// tags returns the scoring tag set for a post: enhanced tags when content
// analysis ran, the manual tags otherwise.
func (s *snapshot) tags(id int64) []string {
	if enhanced, ok := s.enhancedTags[id]; ok {
		return enhanced
	}
	if idx, ok := s.index[id]; ok {
		return s.posts[idx].Tags
	}
	return nil
}

// topic returns a post's topic id, or -1 when unclustered.
func (s *snapshot) topic(id int64) int {
	if s.analyzer == nil {
		return -1
	}
	return s.analyzer.Topic(id)
}

// buildEnhancedTags merges a post's manual tags, its content keywords and
// its topic's leading keywords, preserving first-seen order and dropping
// duplicates. Manual tags always come first so user intent outranks
// derived terms.
func buildEnhancedTags(post *models.Post, analyzer *ContentAnalyzer, topicKeywordLimit int) []string {
	out := make([]string, 0, len(post.Tags))
	seen := make(map[string]struct{}, len(post.Tags))
	add := func(tag string) {
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	for _, tag := range post.Tags {
		add(tag)
	}
	if analyzer == nil {
		return out
	}
	for _, kw := range analyzer.Keywords(post.ID) {
		add(kw)
	}
	topicKeys := analyzer.TopicKeywords(analyzer.Topic(post.ID))
	if len(topicKeys) > topicKeywordLimit {
		topicKeys = topicKeys[:topicKeywordLimit]
	}
	for _, kw := range topicKeys {
		add(kw)
	}
	return out
}
