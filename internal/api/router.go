// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/config"
	"github.com/chari00001/redit-feed/internal/recommend"
)

// Server wires the recommendation engine to HTTP.
type Server struct {
	cfg      *config.ServerConfig
	engine   *recommend.Engine
	lookback time.Duration
	log      zerolog.Logger
	started  time.Time
}

// NewServer builds the API server. lookback is how far back the manual
// new-post analysis endpoint reaches.
func NewServer(cfg *config.ServerConfig, engine *recommend.Engine, lookback time.Duration, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		engine:   engine,
		lookback: lookback,
		log:      log.With().Str("component", "api").Logger(),
		started:  time.Now(),
	}
}

// Handler builds the router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORSOrigins))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter(s.cfg.RateLimit, s.cfg.RateLimitWindow))
		r.Use(instrument)
		r.Use(requestLogger(s.log))

		r.Get("/feed", s.handleFeed)
		r.Get("/recommendations", s.handleRecommendations)
		r.Post("/interactions", s.handleCreateInteraction)

		r.Get("/posts/{postID}/similar", s.handleSimilarPosts)
		r.Get("/posts/{postID}/analysis", s.handlePostAnalysis)
		r.Get("/users/{userID}/profile", s.handleUserProfile)

		r.Get("/topics", s.handleTopics)
		r.Get("/topics/{topicID}/posts", s.handleTopicPosts)

		r.Post("/model/retrain", s.handleRetrain)
		r.Post("/model/analyze-new", s.handleAnalyzeNew)
		r.Get("/model/status", s.handleModelStatus)
	})

	return r
}
