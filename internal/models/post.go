// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// TagList is a post's tag collection. It decodes from a JSON array, a
// JSON-encoded string (the legacy database representation), or anything
// else, in which case it becomes empty. Decoding never returns an error
// for malformed tag data.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler with tolerant semantics.
func (t *TagList) UnmarshalJSON(data []byte) error {
	*t = DecodeTags(data)
	return nil
}

// DecodeTags converts raw tag bytes into a TagList. It accepts a JSON
// array of strings or a JSON string containing an encoded array.
// Anything else yields an empty list.
func DecodeTags(data []byte) TagList {
	var tags []string
	if err := json.Unmarshal(data, &tags); err == nil {
		return nonNil(tags)
	}

	// Legacy rows store tags as a string column holding JSON.
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &tags); err == nil {
			return nonNil(tags)
		}
	}

	return TagList{}
}

// ParseTags decodes a raw tag string from the database into a TagList.
func ParseTags(raw string) TagList {
	if raw == "" {
		return TagList{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return TagList{}
	}
	return nonNil(tags)
}

func nonNil(tags []string) TagList {
	if tags == nil {
		return TagList{}
	}
	return TagList(tags)
}

// Post is a content item in the feed. The recommendation core holds
// read-only copies for the duration of a fit/scoring cycle; the store
// owns the canonical rows.
type Post struct {
	// ID is the unique, stable post identifier.
	ID int64 `json:"id"`

	// UserID is the author.
	UserID int64 `json:"user_id"`

	// Title is the post title (may be empty).
	Title string `json:"title,omitempty"`

	// Content is the post body text.
	Content string `json:"content"`

	// MediaURL is an optional attached media link.
	MediaURL string `json:"media_url,omitempty"`

	// CreatedAt is when the post was published.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the post was last edited, if ever.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Engagement counters. Non-negative.
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`
	SharesCount   int `json:"shares_count"`
	ViewsCount    int `json:"views_count"`

	// Visibility is "public", "private", or a community scope.
	Visibility string `json:"visibility,omitempty"`

	// Tags is the manual tag list (possibly empty).
	Tags TagList `json:"tags"`

	// AllowComments controls whether the post accepts comments.
	AllowComments bool `json:"allow_comments"`

	// IsPinned marks posts pinned by moderators.
	IsPinned bool `json:"is_pinned"`

	// CommunityID scopes the post to a community, if any.
	CommunityID *int64 `json:"community_id,omitempty"`
}

// PopularityScore is the raw engagement score used by the popularity
// fallback ranking. Comments and shares count more than views because
// they signal stronger intent.
func (p *Post) PopularityScore() float64 {
	return float64(p.LikesCount)*0.3 +
		float64(p.CommentsCount)*0.5 +
		float64(p.SharesCount)*0.7 +
		float64(p.ViewsCount)*0.1
}

// HasEngagement reports whether any engagement counter is non-zero.
func (p *Post) HasEngagement() bool {
	return p.LikesCount > 0 || p.CommentsCount > 0 || p.SharesCount > 0 || p.ViewsCount > 0
}
