// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package main is the entry point for the feed recommendation server.
//
// Startup order: configuration, logging, DuckDB store, interaction WAL,
// model storage, recommendation engine, then the supervision tree with
// the WAL flusher, the training scheduler and the HTTP API. Shutdown is
// graceful on SIGINT/SIGTERM: the HTTP server drains in-flight requests
// and the flusher pushes buffered interactions into the store before
// the process exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/api"
	"github.com/chari00001/redit-feed/internal/config"
	"github.com/chari00001/redit-feed/internal/database"
	"github.com/chari00001/redit-feed/internal/logging"
	"github.com/chari00001/redit-feed/internal/recommend"
	"github.com/chari00001/redit-feed/internal/recommend/storage"
	"github.com/chari00001/redit-feed/internal/supervisor"
	"github.com/chari00001/redit-feed/internal/supervisor/services"
	"github.com/chari00001/redit-feed/internal/wal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("addr", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))).
		Str("db_path", cfg.Database.Path).
		Str("wal_dir", cfg.WAL.Dir).
		Msg("Starting redit-feed")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedSampleData {
		if err := db.SeedSampleData(context.Background()); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	walLog, err := wal.Open(&cfg.WAL, log)
	if err != nil {
		return fmt.Errorf("wal: %w", err)
	}
	defer func() {
		if err := walLog.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing WAL")
		}
	}()

	modelStore, err := storage.NewStore(cfg.Models.Dir)
	if err != nil {
		return fmt.Errorf("model storage: %w", err)
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, log)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	engine.SetDataProvider(wal.NewProvider(db, walLog))
	engine.SetModelStore(modelStore)

	if cfg.Models.LoadOnStartup {
		switch err := engine.LoadModel(context.Background()); {
		case err == nil:
		case errors.Is(err, storage.ErrNoModel):
			log.Info().Msg("No saved model, waiting for first training run")
		default:
			log.Warn().Err(err).Msg("Model restore failed, will retrain from scratch")
		}
	}

	apiServer := api.NewServer(&cfg.Server, engine, cfg.Recommend.Training.AnalyzeLookback, log)
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(log), treeCfg)

	tree.AddDataService(services.NewFlushService(
		walLog, db, cfg.WAL.FlushInterval, cfg.WAL.FlushBatchSize, log))
	tree.AddEngineService(services.NewTrainerService(engine, modelStore, services.TrainerConfig{
		TrainOnStartup:  cfg.Recommend.Training.TrainOnStartup,
		Interval:        cfg.Recommend.Training.Interval,
		AnalyzeInterval: cfg.Recommend.Training.AnalyzeInterval,
		AnalyzeLookback: cfg.Recommend.Training.AnalyzeLookback,
		Timeout:         cfg.Recommend.Training.Timeout,
		SaveAfterTrain:  cfg.Models.SaveAfterTrain,
		KeepVersions:    cfg.Models.KeepVersions,
	}, log))
	tree.AddAPIService(services.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	log.Info().Msg("Shutdown complete")
	return nil
}
