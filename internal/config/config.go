// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package config loads and validates service configuration.
//
// Configuration is layered with koanf: built-in defaults, then an
// optional YAML file, then environment variables, with later layers
// winning. Validation runs once at startup; a bad config fails the
// process instead of surfacing later as runtime misbehavior.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chari00001/redit-feed/internal/logging"
	"github.com/chari00001/redit-feed/internal/recommend"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig     `json:"server" koanf:"server"`
	Database  DatabaseConfig   `json:"database" koanf:"database"`
	WAL       WALConfig        `json:"wal" koanf:"wal"`
	Models    ModelsConfig     `json:"models" koanf:"models"`
	Recommend recommend.Config `json:"recommend" koanf:"recommend"`
	Logging   logging.Config   `json:"logging" koanf:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `json:"host" koanf:"host" validate:"required"`

	// Port is the listen port.
	Port int `json:"port" koanf:"port" validate:"gte=1,lte=65535"`

	// ReadTimeout bounds request reads.
	ReadTimeout time.Duration `json:"read_timeout" koanf:"read_timeout" validate:"gt=0"`

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout" validate:"gt=0"`

	// RateLimit is requests per window per client IP. Zero disables.
	RateLimit int `json:"rate_limit" koanf:"rate_limit" validate:"gte=0"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window" validate:"gt=0"`

	// CORSOrigins lists allowed origins.
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`
}

// DatabaseConfig holds the DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file. Empty means in-memory, used by tests.
	Path string `json:"path" koanf:"path"`

	// MaxMemory caps DuckDB's memory usage (e.g. "1GB").
	MaxMemory string `json:"max_memory" koanf:"max_memory"`

	// Threads is the DuckDB worker thread count. Zero picks the CPU count.
	Threads int `json:"threads" koanf:"threads" validate:"gte=0"`

	// SeedSampleData loads a small demo corpus into an empty database.
	SeedSampleData bool `json:"seed_sample_data" koanf:"seed_sample_data"`
}

// WALConfig holds the interaction write-ahead log settings.
type WALConfig struct {
	// Dir is the Badger directory for the interaction log.
	Dir string `json:"dir" koanf:"dir" validate:"required"`

	// FlushInterval is how often buffered interactions drain to the
	// database.
	FlushInterval time.Duration `json:"flush_interval" koanf:"flush_interval" validate:"gt=0"`

	// FlushBatchSize caps how many entries drain per flush cycle.
	FlushBatchSize int `json:"flush_batch_size" koanf:"flush_batch_size" validate:"gt=0"`

	// RetentionPeriod is how long drained entries are kept before GC.
	RetentionPeriod time.Duration `json:"retention_period" koanf:"retention_period" validate:"gt=0"`
}

// ModelsConfig holds model persistence settings.
type ModelsConfig struct {
	// Dir is where fitted models are stored.
	Dir string `json:"dir" koanf:"dir" validate:"required"`

	// KeepVersions is how many model versions survive pruning.
	KeepVersions int `json:"keep_versions" koanf:"keep_versions" validate:"gte=1"`

	// SaveAfterTrain persists the model after every successful fit.
	SaveAfterTrain bool `json:"save_after_train" koanf:"save_after_train"`

	// LoadOnStartup restores the last saved model before the first train.
	LoadOnStartup bool `json:"load_on_startup" koanf:"load_on_startup"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/feed.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		WAL: WALConfig{
			Dir:             "/data/wal",
			FlushInterval:   5 * time.Second,
			FlushBatchSize:  500,
			RetentionPeriod: 24 * time.Hour,
		},
		Models: ModelsConfig{
			Dir:            "/data/models",
			KeepVersions:   3,
			SaveAfterTrain: true,
			LoadOnStartup:  true,
		},
		Recommend: *recommend.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
	}
}

// Validate checks the configuration. Struct tags cover ranges; the
// recommendation engine applies its own domain checks.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}
