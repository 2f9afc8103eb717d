// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package models defines the core domain types shared across the service:
// posts, user interactions, and their JSON representations.
//
// Tags arrive from upstream stores in several shapes (a JSON array, a
// JSON-encoded string column, or malformed data). TagList absorbs all of
// them; malformed input decodes to an empty list rather than an error so
// a single bad row never poisons a feed request.
package models
