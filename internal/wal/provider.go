// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package wal

import (
	"context"
	"time"

	"github.com/chari00001/redit-feed/internal/models"
	"github.com/chari00001/redit-feed/internal/recommend"
)

// Provider routes interaction writes through the log while reads keep
// going to the backing store. With it in front of the database, the log
// is the single durable write path for interactions; the flush service
// drains it into the store in batches.
type Provider struct {
	store recommend.DataProvider
	log   *Log
}

var _ recommend.DataProvider = (*Provider)(nil)

// NewProvider wraps store so interaction appends land in l.
func NewProvider(store recommend.DataProvider, l *Log) *Provider {
	return &Provider{store: store, log: l}
}

// FetchPosts delegates to the backing store.
func (p *Provider) FetchPosts(ctx context.Context) ([]models.Post, error) {
	return p.store.FetchPosts(ctx)
}

// FetchPostsSince delegates to the backing store.
func (p *Provider) FetchPostsSince(ctx context.Context, since time.Time) ([]models.Post, error) {
	return p.store.FetchPostsSince(ctx, since)
}

// FetchInteractions merges the store's log with pending entries that
// have not been drained yet, so profile rebuilds never miss recent
// events. Pending entries are newer than anything in the store.
func (p *Provider) FetchInteractions(ctx context.Context, userID int64) ([]models.Interaction, error) {
	out, err := p.store.FetchInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = p.log.Replay(ctx, func(in models.Interaction) error {
		if userID > 0 && in.UserID != userID {
			return nil
		}
		out = append(out, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendInteraction appends to the log instead of the store.
func (p *Provider) AppendInteraction(ctx context.Context, in models.Interaction) error {
	return p.log.Append(ctx, in)
}
