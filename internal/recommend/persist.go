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

// ModelStore persists fitted model state across restarts. Implemented by
// the storage layer.
type ModelStore interface {
	Save(ctx context.Context, state *ModelState) error
	Load(ctx context.Context) (*ModelState, error)
}

// ModelState is the serializable form of a fitted snapshot. All fields
// are exported for gob.
type ModelState struct {
	Version  int
	FittedAt time.Time

	Posts         []models.Post
	TagVectorizer Vectorizer
	TagMatrix     [][]float64

	// Analyzer is nil when the fit skipped content analysis.
	Analyzer *AnalyzerState

	EnhancedTags map[int64][]string
}

// AnalyzerState is the serializable form of a fitted content analyzer.
type AnalyzerState struct {
	Vectorizer      Vectorizer
	Matrix          [][]float64
	PostIDs         []int64
	PostKeywords    map[int64][]string
	PostClusters    map[int64]int
	ClusterKeywords map[int][]string
	Config          AnalyzerConfig
}

// state exports the analyzer for persistence.
func (a *ContentAnalyzer) state() *AnalyzerState {
	return &AnalyzerState{
		Vectorizer:      *a.vectorizer,
		Matrix:          a.matrix,
		PostIDs:         a.postIDs,
		PostKeywords:    a.postKeywords,
		PostClusters:    a.postClusters,
		ClusterKeywords: a.clusterKeywords,
		Config:          a.cfg,
	}
}

// analyzerFromState rebuilds an analyzer from persisted state.
func analyzerFromState(st *AnalyzerState) *ContentAnalyzer {
	a := &ContentAnalyzer{
		vectorizer:      &st.Vectorizer,
		matrix:          st.Matrix,
		postIDs:         st.PostIDs,
		postKeywords:    st.PostKeywords,
		postClusters:    st.PostClusters,
		clusterKeywords: st.ClusterKeywords,
		cfg:             st.Config,
	}
	a.postIndex = make(map[int64]int, len(a.postIDs))
	for i, id := range a.postIDs {
		a.postIndex[id] = i
	}
	return a
}

// state exports the snapshot for persistence.
func (s *snapshot) state() *ModelState {
	st := &ModelState{
		Version:       s.version,
		FittedAt:      s.fittedAt,
		Posts:         s.posts,
		TagVectorizer: s.tagVec.Vectorizer,
		TagMatrix:     s.tagMatrix,
		EnhancedTags:  s.enhancedTags,
	}
	if s.analyzer != nil {
		st.Analyzer = s.analyzer.state()
	}
	return st
}

// snapshotFromState rebuilds a snapshot from persisted state.
func snapshotFromState(st *ModelState) *snapshot {
	snap := &snapshot{
		version:      st.Version,
		fittedAt:     st.FittedAt,
		posts:        st.Posts,
		index:        make(map[int64]int, len(st.Posts)),
		tagVec:       &TagVectorizer{Vectorizer: st.TagVectorizer},
		tagMatrix:    st.TagMatrix,
		enhancedTags: st.EnhancedTags,
	}
	for i, p := range st.Posts {
		snap.index[p.ID] = i
	}
	if st.Analyzer != nil {
		snap.analyzer = analyzerFromState(st.Analyzer)
	}
	if snap.enhancedTags == nil {
		snap.enhancedTags = make(map[int64][]string)
	}
	return snap
}
