// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/chari00001/redit-feed/internal/metrics"
	"github.com/chari00001/redit-feed/internal/models"
)

// AppendInteraction appends one event to the interaction log.
func (db *DB) AppendInteraction(ctx context.Context, in models.Interaction) error {
	start := time.Now()

	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `INSERT INTO interactions
		(user_id, post_id, type, weight, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.UserID, in.PostID, string(in.Type), in.Weight, in.Timestamp)
	metrics.RecordDBQuery("insert", "interactions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// AppendInteractions appends a batch inside one transaction. Used by the
// write-ahead log flusher; either the whole batch lands or none of it.
func (db *DB) AppendInteractions(ctx context.Context, batch []models.Interaction) error {
	if len(batch) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordDBQuery("insert_batch", "interactions", time.Since(start), err)
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO interactions
		(user_id, post_id, type, weight, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.RecordDBQuery("insert_batch", "interactions", time.Since(start), err)
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, in := range batch {
		ts := in.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, in.UserID, in.PostID, string(in.Type), in.Weight, ts); err != nil {
			metrics.RecordDBQuery("insert_batch", "interactions", time.Since(start), err)
			return fmt.Errorf("append batch entry: %w", err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("insert_batch", "interactions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// FetchInteractions returns the interaction log in chronological order,
// optionally filtered to one user. A userID <= 0 returns all events.
func (db *DB) FetchInteractions(ctx context.Context, userID int64) ([]models.Interaction, error) {
	start := time.Now()

	query := `SELECT user_id, post_id, type, weight, created_at
		FROM interactions ORDER BY created_at, rowid`
	args := []any{}
	if userID > 0 {
		query = `SELECT user_id, post_id, type, weight, created_at
			FROM interactions WHERE user_id = ? ORDER BY created_at, rowid`
		args = append(args, userID)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		var (
			in  models.Interaction
			typ string
		)
		if err := rows.Scan(&in.UserID, &in.PostID, &typ, &in.Weight, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Type = models.InteractionType(typ)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// CountInteractions returns the number of logged interactions.
func (db *DB) CountInteractions(ctx context.Context) (int, error) {
	start := time.Now()
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&n)
	metrics.RecordDBQuery("count", "interactions", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}
