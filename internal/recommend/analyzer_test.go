// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/chari00001/redit-feed/internal/models"
)

func analyzerTestConfig() AnalyzerConfig {
	cfg := DefaultConfig().Analyzer
	cfg.MinDocFreq = 1
	return cfg
}

func topicCorpus() []models.Post {
	return []models.Post{
		{ID: 1, Title: "pasta recipe", Content: "cooking pasta with tomato sauce and fresh basil"},
		{ID: 2, Title: "risotto recipe", Content: "cooking risotto needs patience and good tomato stock"},
		{ID: 3, Title: "pizza dough", Content: "cooking pizza starts with dough and tomato sauce"},
		{ID: 4, Title: "goroutine patterns", Content: "golang concurrency with goroutine worker pools"},
		{ID: 5, Title: "channel pipelines", Content: "golang concurrency pipelines connect goroutine stages"},
		{ID: 6, Title: "context cancellation", Content: "golang concurrency cancellation flows through contexts"},
	}
}

func TestExtractKeywords(t *testing.T) {
	a := NewContentAnalyzer(analyzerTestConfig())
	keywords := a.ExtractKeywords(topicCorpus())

	if len(keywords) != 6 {
		t.Fatalf("expected keywords for 6 posts, got %d", len(keywords))
	}
	for id, kws := range keywords {
		if len(kws) == 0 {
			t.Errorf("post %d has no keywords", id)
		}
		if len(kws) > 10 {
			t.Errorf("post %d has %d keywords, cap is 10", id, len(kws))
		}
	}

	// Title terms are tripled, so the title word should rank inside the
	// keyword list.
	found := false
	for _, kw := range keywords[1] {
		if kw == "pasta" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("title term 'pasta' missing from keywords %v", keywords[1])
	}
}

func TestClusterSeparatesTopics(t *testing.T) {
	a := NewContentAnalyzer(analyzerTestConfig())
	a.ExtractKeywords(topicCorpus())

	clusters, err := a.Cluster(2, 10, 100, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}

	if clusters[1] != clusters[2] || clusters[2] != clusters[3] {
		t.Errorf("cooking posts split across topics: %v", clusters)
	}
	if clusters[4] != clusters[5] || clusters[5] != clusters[6] {
		t.Errorf("golang posts split across topics: %v", clusters)
	}
	if clusters[1] == clusters[4] {
		t.Errorf("cooking and golang posts share a topic: %v", clusters)
	}

	for _, topicID := range a.Topics() {
		if len(a.TopicKeywords(topicID)) == 0 {
			t.Errorf("topic %d has no keywords", topicID)
		}
	}
}

func TestClusterBeforeExtract(t *testing.T) {
	a := NewContentAnalyzer(analyzerTestConfig())
	if _, err := a.Cluster(2, 1, 10, rand.New(rand.NewSource(1))); err != ErrNotAnalyzed {
		t.Fatalf("expected ErrNotAnalyzed, got %v", err)
	}
}

func TestAnalysisDeterministic(t *testing.T) {
	run := func() (map[int64][]string, map[int64]int) {
		a := NewContentAnalyzer(analyzerTestConfig())
		kws := a.ExtractKeywords(topicCorpus())
		clusters, err := a.Cluster(0, 10, 100, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("cluster: %v", err)
		}
		return kws, clusters
	}

	kwsA, clustersA := run()
	kwsB, clustersB := run()

	if !reflect.DeepEqual(kwsA, kwsB) {
		t.Errorf("keyword extraction not deterministic:\n%v\n%v", kwsA, kwsB)
	}
	if !reflect.DeepEqual(clustersA, clustersB) {
		t.Errorf("clustering not deterministic:\n%v\n%v", clustersA, clustersB)
	}
}

func TestIdenticalPostsSingleEffectiveTopic(t *testing.T) {
	posts := make([]models.Post, 5)
	for i := range posts {
		posts[i] = models.Post{
			ID:      int64(i + 1),
			Title:   "news",
			Content: "breaking news update",
		}
	}

	a := NewContentAnalyzer(analyzerTestConfig())
	a.ExtractKeywords(posts)

	// Identical documents produce identical vectors; clustering must not
	// panic and all posts should land together.
	clusters, err := a.Cluster(0, 10, 100, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	first := clusters[1]
	for id, topic := range clusters {
		if topic != first {
			t.Errorf("post %d in topic %d, want %d", id, topic, first)
		}
	}
}

func TestSimilarPostIDs(t *testing.T) {
	a := NewContentAnalyzer(analyzerTestConfig())
	a.ExtractKeywords(topicCorpus())
	if _, err := a.Cluster(2, 10, 100, rand.New(rand.NewSource(42))); err != nil {
		t.Fatalf("cluster: %v", err)
	}

	similar := a.SimilarPostIDs(1, 5)
	if len(similar) != 2 {
		t.Fatalf("expected 2 topic mates for post 1, got %d", len(similar))
	}
	for _, s := range similar {
		if s.ID != 2 && s.ID != 3 {
			t.Errorf("unexpected topic mate %d for post 1", s.ID)
		}
		if s.ID == 1 {
			t.Error("post must not be similar to itself")
		}
	}

	if got := a.SimilarPostIDs(999, 5); len(got) != 0 {
		t.Errorf("unknown post should yield no results, got %v", got)
	}
}

func TestTopicPostIDsRespectsLimit(t *testing.T) {
	a := NewContentAnalyzer(analyzerTestConfig())
	a.ExtractKeywords(topicCorpus())
	if _, err := a.Cluster(2, 10, 100, rand.New(rand.NewSource(42))); err != nil {
		t.Fatalf("cluster: %v", err)
	}

	topic := a.Topic(1)
	ids := a.TopicPostIDs(topic, 2)
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	for _, id := range ids {
		if a.Topic(id) != topic {
			t.Errorf("post %d not in topic %d", id, topic)
		}
	}
}
