// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/chari00001/redit-feed/internal/metrics"
	"github.com/chari00001/redit-feed/internal/models"
	"github.com/chari00001/redit-feed/internal/recommend"
)

// engineError maps engine failures onto the HTTP error taxonomy.
func (s *Server) engineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotFitted), errors.Is(err, recommend.ErrNotAnalyzed):
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeModelNotReady, "model not trained yet")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		writeError(w, r, http.StatusConflict, ErrCodeTrainingBusy, "training already in progress")
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func queryInt64(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// queryLimit parses the optional limit parameter. Zero means "use the
// configured default"; the engine clamps oversized values.
func queryLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func pathInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// recommendFor serves both the feed and the recommendations endpoint;
// the feed hides posts the user has already interacted with.
func (s *Server) recommendFor(w http.ResponseWriter, r *http.Request, excludeSeen bool) {
	userID, ok := queryInt64(r, "user_id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be a positive integer")
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer")
		return
	}

	mode := "personalized"
	if s.engine.UserProfileSummary(userID).Status == recommend.ProfileStatusNewUser {
		mode = "fallback"
	}

	start := time.Now()
	recs, err := s.engine.Recommend(r.Context(), userID, limit, excludeSeen)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	metrics.RecommendRequestsTotal.WithLabelValues(mode).Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())

	writeSuccess(w, r, http.StatusOK, map[string]any{
		"user_id":         userID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.recommendFor(w, r, true)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	s.recommendFor(w, r, false)
}

type interactionRequest struct {
	UserID int64   `json:"user_id"`
	PostID int64   `json:"post_id"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight,omitempty"`
}

func (s *Server) handleCreateInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
		return
	}
	if req.UserID <= 0 || req.PostID <= 0 {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidation, "user_id and post_id must be positive integers")
		return
	}
	interactionType := models.InteractionType(req.Type)
	if !interactionType.Valid() {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidation, "type must be one of view, like, comment, share")
		return
	}

	in := models.Interaction{
		UserID:    req.UserID,
		PostID:    req.PostID,
		Type:      interactionType,
		Weight:    req.Weight,
		Timestamp: time.Now().UTC(),
	}
	if err := s.engine.RecordInteraction(r.Context(), in); err != nil {
		s.engineError(w, r, err)
		return
	}
	metrics.InteractionsRecorded.WithLabelValues(req.Type).Inc()

	writeSuccess(w, r, http.StatusCreated, map[string]any{
		"status":  "recorded",
		"user_id": req.UserID,
		"post_id": req.PostID,
		"type":    req.Type,
	})
}

func (s *Server) handleSimilarPosts(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathInt64(r, "postID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "post id must be an integer")
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer")
		return
	}

	similar, err := s.engine.SimilarPosts(postID, limit)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{
		"post_id":       postID,
		"similar_posts": similar,
		"count":         len(similar),
	})
}

func (s *Server) handlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathInt64(r, "postID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "post id must be an integer")
		return
	}

	analysis, err := s.engine.PostAnalysis(postID)
	if errors.Is(err, recommend.ErrUnknownPost) {
		// Unknown ids are not an error, the model just has nothing to say.
		writeSuccess(w, r, http.StatusOK, nil)
		return
	}
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, analysis)
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(r, "userID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "user id must be an integer")
		return
	}
	writeSuccess(w, r, http.StatusOK, s.engine.UserProfileSummary(userID))
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.TopicsSummary()
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, summary)
}

func (s *Server) handleTopicPosts(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathInt64(r, "topicID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "topic id must be an integer")
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer")
		return
	}

	posts, err := s.engine.TopicPosts(int(topicID), limit)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{
		"topic_id": topicID,
		"posts":    posts,
		"count":    len(posts),
	})
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Retrain(r.Context()); err != nil {
		s.engineError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, s.engine.Status())
}

func (s *Server) handleAnalyzeNew(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-s.lookback)
	count, err := s.engine.AnalyzeNewPosts(r.Context(), since)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{
		"analyzed_posts": count,
		"since":          since,
	})
}

func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, s.engine.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.engine.Status()
	writeSuccess(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"model_fitted":   status.Fitted,
		"model_version":  status.ModelVersion,
	})
}
