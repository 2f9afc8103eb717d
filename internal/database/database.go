// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package database is the DuckDB-backed store for posts and the
// interaction log. It implements recommend.DataProvider so the engine
// can train and serve without knowing about SQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/config"
	"github.com/chari00001/redit-feed/internal/recommend"
)

// Compile-time check that DB satisfies the engine's provider contract.
var _ recommend.DataProvider = (*DB)(nil)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
	log  zerolog.Logger
}

// New opens the database and initializes the schema. An empty Path opens
// an in-memory database, used by tests and throwaway deployments.
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	} else {
		// Ensure the parent directory exists before DuckDB touches the file.
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	// Disable extension auto-install/auto-load so startup never hangs in
	// restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{
		conn: conn,
		cfg:  cfg,
		log:  log.With().Str("component", "database").Logger(),
	}
	if err := db.createTables(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db.log.Info().
		Str("path", cfg.Path).
		Int("threads", threads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database ready")
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the raw connection for ad-hoc queries in tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS posts_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY DEFAULT nextval('posts_id_seq'),
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			media_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP,
			likes_count INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0,
			shares_count INTEGER NOT NULL DEFAULT 0,
			views_count INTEGER NOT NULL DEFAULT 0,
			visibility TEXT NOT NULL DEFAULT 'public',
			tags TEXT NOT NULL DEFAULT '[]',
			allow_comments BOOLEAN NOT NULL DEFAULT TRUE,
			is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
			community_id BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id BIGINT NOT NULL,
			post_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			weight DOUBLE NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_post ON interactions(post_id)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// nullableTime converts a pointer into the driver's nullable form.
func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
