// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

// Package recommend implements the personalized feed recommendation engine.
//
// # Architecture
//
// The engine turns raw posts and interaction events into ranked, per-user
// feeds through a fixed pipeline:
//
//   - Tag vectorization: TF-IDF over each post's tag list
//   - Content analysis: text cleaning, 1-2 gram TF-IDF, k-means topic
//     clustering, per-post and per-topic keyword tables
//   - Tag enhancement: manual tags ∪ content keywords ∪ topic keywords
//   - User profiles: normalized tag affinities from weighted interactions
//   - Scoring: multi-factor composite (tag match, topic diversity,
//     interaction-type preference, recency, popularity, bounded jitter)
//   - Diversity ranking: per-topic cap so no topic dominates a result
//
// # Snapshot Model
//
// All fitted state (feature matrices, cluster assignments, keyword tables,
// the post index) lives in an immutable snapshot published through an
// atomic pointer. A retrain builds a brand-new snapshot off to the side
// and swaps it in with a single store, so in-flight scoring requests
// always observe a self-consistent model. Scoring is read-only and runs
// concurrently against the current snapshot without coordination.
//
// Profile updates are serialized per user; updates for different users
// proceed in parallel.
//
// # Cold Start
//
// Users without any recorded interactions receive a diversified
// popularity ranking instead of personalized scores. An absent profile is
// not an error.
//
// # Determinism
//
// Clustering is deterministic under the configured seed. Scoring
// intentionally includes a bounded random perturbation for tie-breaking
// and exploration; tests pin the random source via SetRandSource.
package recommend
