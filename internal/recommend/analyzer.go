// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"math/rand"
	"sort"

	"github.com/chari00001/redit-feed/internal/models"
)

// ContentAnalyzer derives keywords and topic clusters from post text.
// Title terms are weighted 3x over body terms, features are 1-2 grams
// over cleaned, stopword-filtered text, and topics come from k-means over
// the TF-IDF matrix.
//
// An analyzer is built once per fit and is immutable afterwards; it is
// safe for concurrent reads.
type ContentAnalyzer struct {
	vectorizer *Vectorizer
	matrix     [][]float64
	postIDs    []int64
	postIndex  map[int64]int

	postKeywords    map[int64][]string
	postClusters    map[int64]int
	clusterKeywords map[int][]string

	cfg AnalyzerConfig
}

// NewContentAnalyzer creates an unfitted analyzer.
func NewContentAnalyzer(cfg AnalyzerConfig) *ContentAnalyzer {
	return &ContentAnalyzer{
		cfg:             cfg,
		postKeywords:    make(map[int64][]string),
		postClusters:    make(map[int64]int),
		clusterKeywords: make(map[int][]string),
	}
}

// Analyzed reports whether keyword extraction has run.
func (a *ContentAnalyzer) Analyzed() bool {
	return a.vectorizer != nil
}

// ExtractKeywords fits the content vector space over the posts and
// records each post's highest-weighted terms. Posts with no surviving
// terms get an empty keyword list.
func (a *ContentAnalyzer) ExtractKeywords(posts []models.Post) map[int64][]string {
	docs := make([][]string, len(posts))
	a.postIDs = make([]int64, len(posts))
	a.postIndex = make(map[int64]int, len(posts))
	for i, p := range posts {
		docs[i] = contentDocument(p.Title, p.Content)
		a.postIDs[i] = p.ID
		a.postIndex[p.ID] = i
	}

	a.vectorizer = &Vectorizer{
		MinDocFreq:  a.cfg.MinDocFreq,
		MaxDocRatio: a.cfg.MaxDocRatio,
		MaxFeatures: a.cfg.MaxFeatures,
		SublinearTF: true,
	}
	a.matrix = a.vectorizer.FitTransform(docs)

	a.postKeywords = make(map[int64][]string, len(posts))
	for i, id := range a.postIDs {
		a.postKeywords[id] = topTerms(a.matrix[i], a.vectorizer.Vocabulary, a.cfg.KeywordsPerPost)
	}
	return a.postKeywords
}

// Cluster groups the analyzed posts into topics. A k of zero selects the
// cluster count from the corpus size. ExtractKeywords must run first.
func (a *ContentAnalyzer) Cluster(k, restarts, maxIter int, rng *rand.Rand) (map[int64]int, error) {
	if !a.Analyzed() {
		return nil, ErrNotAnalyzed
	}
	if k <= 0 {
		k = autoClusterCount(len(a.postIDs))
	}

	res := kmeans(a.matrix, k, restarts, maxIter, rng)

	a.postClusters = make(map[int64]int, len(a.postIDs))
	for i, id := range a.postIDs {
		a.postClusters[id] = res.Labels[i]
	}
	a.extractClusterKeywords(res.Labels)
	return a.postClusters, nil
}

// extractClusterKeywords sums the TF-IDF rows of each cluster's members
// and keeps the highest-scoring terms as the topic's keyword list.
func (a *ContentAnalyzer) extractClusterKeywords(labels []int) {
	dim := a.vectorizer.Dim()
	sums := make(map[int][]float64)
	for i, label := range labels {
		if sums[label] == nil {
			sums[label] = make([]float64, dim)
		}
		for j, v := range a.matrix[i] {
			sums[label][j] += v
		}
	}

	a.clusterKeywords = make(map[int][]string, len(sums))
	for label, sum := range sums {
		a.clusterKeywords[label] = topTerms(sum, a.vectorizer.Vocabulary, a.cfg.KeywordsPerTopic)
	}
}

// Keywords returns the keyword list for one post, or nil if the post was
// not part of the analyzed corpus.
func (a *ContentAnalyzer) Keywords(postID int64) []string {
	return a.postKeywords[postID]
}

// Topic returns the topic id for one post. Unanalyzed posts report -1.
func (a *ContentAnalyzer) Topic(postID int64) int {
	if topic, ok := a.postClusters[postID]; ok {
		return topic
	}
	return -1
}

// TopicKeywords returns a topic's keyword list.
func (a *ContentAnalyzer) TopicKeywords(topicID int) []string {
	return a.clusterKeywords[topicID]
}

// Topics returns the topic ids in ascending order.
func (a *ContentAnalyzer) Topics() []int {
	out := make([]int, 0, len(a.clusterKeywords))
	for id := range a.clusterKeywords {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// TopicSize returns how many posts belong to a topic.
func (a *ContentAnalyzer) TopicSize(topicID int) int {
	n := 0
	for _, t := range a.postClusters {
		if t == topicID {
			n++
		}
	}
	return n
}

// PostCount returns the size of the analyzed corpus.
func (a *ContentAnalyzer) PostCount() int {
	return len(a.postIDs)
}

// SimilarPostIDs returns up to topN posts sharing the reference post's
// topic, ranked by cosine similarity of their content vectors. Unknown
// posts yield an empty result.
func (a *ContentAnalyzer) SimilarPostIDs(postID int64, topN int) []ScoredID {
	idx, ok := a.postIndex[postID]
	if !ok {
		return nil
	}
	topic, ok := a.postClusters[postID]
	if !ok {
		return nil
	}

	ref := a.matrix[idx]
	scored := make([]ScoredID, 0)
	for i, id := range a.postIDs {
		if id == postID || a.postClusters[id] != topic {
			continue
		}
		scored = append(scored, ScoredID{ID: id, Score: CosineSimilarity(ref, a.matrix[i])})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// TopicPostIDs returns up to topN post ids in a topic, in corpus order.
func (a *ContentAnalyzer) TopicPostIDs(topicID, topN int) []int64 {
	out := make([]int64, 0, topN)
	for _, id := range a.postIDs {
		if a.postClusters[id] != topicID {
			continue
		}
		out = append(out, id)
		if len(out) == topN {
			break
		}
	}
	return out
}

// ScoredID pairs a post id with a score.
type ScoredID struct {
	ID    int64
	Score float64
}

// topTerms returns up to n vocabulary terms with the highest weights,
// skipping zero-weight terms. Equal weights break ties alphabetically so
// identical corpora produce identical keyword lists.
func topTerms(weights []float64, vocab []string, n int) []string {
	type entry struct {
		term   string
		weight float64
	}
	entries := make([]entry, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			entries = append(entries, entry{vocab[i], w})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].term < entries[j].term
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.term
	}
	return out
}
