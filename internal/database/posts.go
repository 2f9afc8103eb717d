// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/chari00001/redit-feed/internal/metrics"
	"github.com/chari00001/redit-feed/internal/models"
)

const postColumns = `id, user_id, title, content, media_url, created_at, updated_at,
	likes_count, comments_count, shares_count, views_count,
	visibility, tags, allow_comments, is_pinned, community_id`

// CreatePost inserts a post and returns it with the assigned id. A zero
// ID takes the next sequence value; a non-zero ID is kept as-is so seed
// data and imports stay stable across runs.
func (db *DB) CreatePost(ctx context.Context, post *models.Post) error {
	start := time.Now()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	tags, err := json.Marshal(models.TagList(nonNilTags(post.Tags)))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	var row *sql.Row
	if post.ID > 0 {
		row = db.conn.QueryRowContext(ctx, `INSERT INTO posts (
			id, user_id, title, content, media_url, created_at, updated_at,
			likes_count, comments_count, shares_count, views_count,
			visibility, tags, allow_comments, is_pinned, community_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			post.ID, post.UserID, post.Title, post.Content, post.MediaURL,
			post.CreatedAt, nullableTime(post.UpdatedAt),
			post.LikesCount, post.CommentsCount, post.SharesCount, post.ViewsCount,
			orPublic(post.Visibility), string(tags), post.AllowComments, post.IsPinned,
			nullableInt64(post.CommunityID))
	} else {
		row = db.conn.QueryRowContext(ctx, `INSERT INTO posts (
			user_id, title, content, media_url, created_at, updated_at,
			likes_count, comments_count, shares_count, views_count,
			visibility, tags, allow_comments, is_pinned, community_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			post.UserID, post.Title, post.Content, post.MediaURL,
			post.CreatedAt, nullableTime(post.UpdatedAt),
			post.LikesCount, post.CommentsCount, post.SharesCount, post.ViewsCount,
			orPublic(post.Visibility), string(tags), post.AllowComments, post.IsPinned,
			nullableInt64(post.CommunityID))
	}

	err = row.Scan(&post.ID)
	metrics.RecordDBQuery("insert", "posts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// FetchPosts returns all non-private posts, newest first, with tags
// decoded.
func (db *DB) FetchPosts(ctx context.Context) ([]models.Post, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT `+postColumns+`
		FROM posts
		WHERE visibility <> 'private'
		ORDER BY created_at DESC, id DESC`)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// FetchPostsSince returns non-private posts created at or after the
// given time, newest first.
func (db *DB) FetchPostsSince(ctx context.Context, since time.Time) ([]models.Post, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT `+postColumns+`
		FROM posts
		WHERE visibility <> 'private' AND created_at >= ?
		ORDER BY created_at DESC, id DESC`, since)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch posts since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// GetPost returns one post by id, or nil when it does not exist.
func (db *DB) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT `+postColumns+`
		FROM posts WHERE id = ?`, id)
	metrics.RecordDBQuery("select", "posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// CountPosts returns the number of rows in the posts table.
func (db *DB) CountPosts(ctx context.Context) (int, error) {
	start := time.Now()
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	metrics.RecordDBQuery("count", "posts", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var (
			p         models.Post
			updatedAt sql.NullTime
			community sql.NullInt64
			rawTags   string
		)
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Title, &p.Content, &p.MediaURL,
			&p.CreatedAt, &updatedAt,
			&p.LikesCount, &p.CommentsCount, &p.SharesCount, &p.ViewsCount,
			&p.Visibility, &rawTags, &p.AllowComments, &p.IsPinned, &community,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			p.UpdatedAt = &t
		}
		if community.Valid {
			c := community.Int64
			p.CommunityID = &c
		}
		p.Tags = models.ParseTags(rawTags)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func orPublic(visibility string) string {
	if visibility == "" {
		return "public"
	}
	return visibility
}

func nonNilTags(tags models.TagList) models.TagList {
	if tags == nil {
		return models.TagList{}
	}
	return tags
}
