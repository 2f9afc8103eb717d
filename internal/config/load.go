// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first hit
// wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/redit-feed/config.yaml",
	"/etc/redit-feed/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile loads configuration with an explicit file path. An empty path
// skips the file layer.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := normalizeSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are the fields that may arrive as comma-separated
// strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// normalizeSlices splits comma-separated env strings into slices for the
// known slice fields.
func normalizeSlices(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		str, ok := val.(string)
		if !ok || str == "" {
			continue
		}
		parts := strings.Split(str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			if err := k.Set(path, out); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransform maps environment variable names onto config paths.
// Unmapped variables are dropped so unrelated environment noise never
// leaks into the config.
func envTransform(key string) string {
	envMappings := map[string]string{
		// Server
		"http_host":         "server.host",
		"http_port":         "server.port",
		"http_read_timeout": "server.read_timeout",
		"http_timeout":      "server.write_timeout",
		"shutdown_timeout":  "server.shutdown_timeout",
		"rate_limit":        "server.rate_limit",
		"rate_limit_window": "server.rate_limit_window",
		"cors_origins":      "server.cors_origins",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",
		"seed_sample_data":  "database.seed_sample_data",

		// WAL
		"wal_dir":            "wal.dir",
		"wal_flush_interval": "wal.flush_interval",
		"wal_flush_batch":    "wal.flush_batch_size",
		"wal_retention":      "wal.retention_period",

		// Models
		"models_dir":              "models.dir",
		"models_keep_versions":    "models.keep_versions",
		"models_save_after_train": "models.save_after_train",
		"models_load_on_startup":  "models.load_on_startup",

		// Recommendation engine
		"recommend_seed":             "recommend.seed",
		"recommend_jitter":           "recommend.scoring.jitter",
		"recommend_max_features":     "recommend.analyzer.max_features",
		"recommend_clusters":         "recommend.clustering.clusters",
		"recommend_default_top_n":    "recommend.limits.default_top_n",
		"recommend_max_top_n":        "recommend.limits.max_top_n",
		"recommend_train_on_startup": "recommend.training.train_on_startup",
		"recommend_train_interval":   "recommend.training.interval",
		"recommend_analyze_interval": "recommend.training.analyze_interval",
		"recommend_train_timeout":    "recommend.training.timeout",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
