// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/metrics"
	"github.com/chari00001/redit-feed/internal/recommend"
)

// TrainableEngine is the slice of the recommendation engine the trainer
// drives.
type TrainableEngine interface {
	Fitted() bool
	Retrain(ctx context.Context) error
	AnalyzeNewPosts(ctx context.Context, since time.Time) (int, error)
	SaveModel(ctx context.Context) error
	Status() recommend.Status
}

// ModelPruner removes old persisted model versions. Implemented by the
// model storage; optional.
type ModelPruner interface {
	Prune(ctx context.Context, keep int) error
}

// TrainerConfig holds the training schedule.
type TrainerConfig struct {
	// TrainOnStartup fits the model when the service starts, unless a
	// restored model is already live.
	TrainOnStartup bool

	// Interval is the full-retrain cadence.
	Interval time.Duration

	// AnalyzeInterval is the new-post analysis cadence.
	AnalyzeInterval time.Duration

	// AnalyzeLookback is how far back the new-post analysis reaches.
	AnalyzeLookback time.Duration

	// Timeout bounds one training run.
	Timeout time.Duration

	// SaveAfterTrain persists the model after each successful retrain.
	SaveAfterTrain bool

	// KeepVersions is how many persisted versions survive pruning.
	KeepVersions int
}

// TrainerService runs the periodic training loop: full retrains on
// Interval, incremental new-post analysis on AnalyzeInterval.
type TrainerService struct {
	engine TrainableEngine
	pruner ModelPruner
	cfg    TrainerConfig
	log    zerolog.Logger
}

// NewTrainerService builds the trainer. pruner may be nil.
func NewTrainerService(engine TrainableEngine, pruner ModelPruner, cfg TrainerConfig, log zerolog.Logger) *TrainerService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.AnalyzeInterval <= 0 {
		cfg.AnalyzeInterval = 3 * time.Hour
	}
	if cfg.AnalyzeLookback <= 0 {
		cfg.AnalyzeLookback = cfg.AnalyzeInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &TrainerService{
		engine: engine,
		pruner: pruner,
		cfg:    cfg,
		log:    log.With().Str("component", "trainer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	if s.cfg.TrainOnStartup && !s.engine.Fitted() {
		s.train(ctx)
	}

	retrain := time.NewTicker(s.cfg.Interval)
	defer retrain.Stop()
	analyze := time.NewTicker(s.cfg.AnalyzeInterval)
	defer analyze.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retrain.C:
			s.train(ctx)
		case <-analyze.C:
			s.analyze(ctx)
		}
	}
}

func (s *TrainerService) train(ctx context.Context) {
	trainCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := s.engine.Retrain(trainCtx)
	status := s.engine.Status()
	metrics.RecordTraining(time.Since(start), status.ModelVersion, status.PostCount, status.TopicCount, err)

	if err != nil {
		if errors.Is(err, recommend.ErrTrainingInProgress) {
			s.log.Warn().Msg("Skipping scheduled retrain, training already running")
			return
		}
		s.log.Error().Err(err).Msg("Scheduled retrain failed")
		return
	}
	s.log.Info().
		Int("model_version", status.ModelVersion).
		Int("posts", status.PostCount).
		Int("topics", status.TopicCount).
		Dur("took", time.Since(start)).
		Msg("Retrain finished")

	if s.cfg.SaveAfterTrain {
		s.persist(ctx)
	}
}

func (s *TrainerService) persist(ctx context.Context) {
	if err := s.engine.SaveModel(ctx); err != nil {
		s.log.Error().Err(err).Msg("Model save failed")
		return
	}
	if s.pruner != nil && s.cfg.KeepVersions > 0 {
		if err := s.pruner.Prune(ctx, s.cfg.KeepVersions); err != nil {
			s.log.Warn().Err(err).Msg("Model prune failed")
		}
	}
}

func (s *TrainerService) analyze(ctx context.Context) {
	analyzeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	count, err := s.engine.AnalyzeNewPosts(analyzeCtx, time.Now().UTC().Add(-s.cfg.AnalyzeLookback))
	if err != nil {
		if errors.Is(err, recommend.ErrTrainingInProgress) {
			s.log.Warn().Msg("Skipping new-post analysis, training already running")
			return
		}
		s.log.Error().Err(err).Msg("New-post analysis failed")
		return
	}
	if count > 0 {
		s.log.Info().Int("new_posts", count).Msg("Analyzed new posts")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *TrainerService) String() string { return "trainer" }
