// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"context"
	"sort"
	"sync"

	"github.com/chari00001/redit-feed/internal/models"
)

// profileStore owns the per-user interaction history and the profiles
// derived from it. Profiles are always recomputed from the history, never
// patched, so a profile and its history can't drift apart.
//
// Updates are serialized per user; different users proceed in parallel.
// Published *UserProfile values are treated as immutable by readers.
type profileStore struct {
	mu    sync.RWMutex
	users map[int64]*userState
}

type userState struct {
	mu           sync.Mutex
	interactions []models.Interaction
	profile      *UserProfile
	seen         map[int64]struct{}
}

func newProfileStore() *profileStore {
	return &profileStore{users: make(map[int64]*userState)}
}

func (s *profileStore) user(id int64) *userState {
	s.mu.RLock()
	u := s.users[id]
	s.mu.RUnlock()
	if u != nil {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u = s.users[id]; u == nil {
		u = &userState{seen: make(map[int64]struct{})}
		s.users[id] = u
	}
	return u
}

// record appends one interaction and rebuilds that user's profile against
// the given snapshot.
func (s *profileStore) record(in models.Interaction, snap *snapshot) *UserProfile {
	u := s.user(in.UserID)
	u.mu.Lock()
	defer u.mu.Unlock()

	u.interactions = append(u.interactions, in)
	u.seen[in.PostID] = struct{}{}
	u.profile = buildProfile(u.interactions, snap)
	return u.profile
}

// loadFromProvider replaces all histories with the provider's interaction
// log and rebuilds every profile against the snapshot. Called during a
// full fit, before the new snapshot is published.
func (s *profileStore) loadFromProvider(ctx context.Context, provider DataProvider, snap *snapshot) error {
	interactions, err := provider.FetchInteractions(ctx, 0)
	if err != nil {
		return err
	}

	byUser := make(map[int64][]models.Interaction)
	for _, in := range interactions {
		byUser[in.UserID] = append(byUser[in.UserID], in)
	}

	users := make(map[int64]*userState, len(byUser))
	for userID, history := range byUser {
		seen := make(map[int64]struct{}, len(history))
		for _, in := range history {
			seen[in.PostID] = struct{}{}
		}
		users[userID] = &userState{
			interactions: history,
			profile:      buildProfile(history, snap),
			seen:         seen,
		}
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// loadUser fetches one user's history from the provider and builds their
// profile. Used on a profile miss, so interactions written to the store
// by another process still personalize before the next full fit. Returns
// nil when the provider has no history for the user either.
func (s *profileStore) loadUser(ctx context.Context, provider DataProvider, userID int64, snap *snapshot) (*UserProfile, error) {
	history, err := provider.FetchInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	// A concurrent record may have built the profile already; its history
	// is fresher than the fetched one, so keep it.
	if u.profile == nil {
		u.interactions = history
		for _, in := range history {
			u.seen[in.PostID] = struct{}{}
		}
		u.profile = buildProfile(history, snap)
	}
	return u.profile, nil
}

// rebuildAll recomputes every profile against a new snapshot. Used on
// retrain so tag affinities track the refreshed enhanced tag sets.
func (s *profileStore) rebuildAll(snap *snapshot) {
	s.mu.RLock()
	users := make([]*userState, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	for _, u := range users {
		u.mu.Lock()
		u.profile = buildProfile(u.interactions, snap)
		u.mu.Unlock()
	}
}

// profile returns the user's profile, or nil when the user has no
// recorded interactions.
func (s *profileStore) profile(userID int64) *UserProfile {
	s.mu.RLock()
	u := s.users[userID]
	s.mu.RUnlock()
	if u == nil {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.profile
}

// seenPosts returns the set of posts the user has interacted with.
func (s *profileStore) seenPosts(userID int64) map[int64]struct{} {
	s.mu.RLock()
	u := s.users[userID]
	s.mu.RUnlock()
	if u == nil {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[int64]struct{}, len(u.seen))
	for id := range u.seen {
		out[id] = struct{}{}
	}
	return out
}

// count returns the number of users with at least one interaction.
func (s *profileStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// buildProfile derives a user profile from their interaction history.
// Each interaction distributes its weight over the post's scoring tags
// (enhanced tags when available), and the normalizer accumulates the
// weight once per tag, so a heavily tagged post spreads affinity rather
// than concentrating it.
//
// Interactions with posts missing from the snapshot still count toward
// the type histogram but contribute no tag affinity.
func buildProfile(interactions []models.Interaction, snap *snapshot) *UserProfile {
	p := &UserProfile{
		TagWeights:        make(map[string]float64),
		TopicWeights:      make(map[int]float64),
		TopicCounts:       make(map[int]int),
		InteractionCounts: make(map[models.InteractionType]int),
		TotalInteractions: len(interactions),
	}

	var totalTagWeight, totalTopicWeight float64
	for _, in := range interactions {
		p.InteractionCounts[in.Type]++

		if snap == nil {
			continue
		}
		weight := in.EffectiveWeight()
		for _, tag := range snap.tags(in.PostID) {
			p.TagWeights[tag] += weight
			totalTagWeight += weight
		}
		if topic := snap.topic(in.PostID); topic >= 0 {
			p.TopicWeights[topic] += weight
			p.TopicCounts[topic]++
			totalTopicWeight += weight
		}
	}

	if totalTagWeight > 0 {
		for tag := range p.TagWeights {
			p.TagWeights[tag] /= totalTagWeight
		}
	}
	if totalTopicWeight > 0 {
		for topic := range p.TopicWeights {
			p.TopicWeights[topic] /= totalTopicWeight
		}
	}
	return p
}

// topInterests returns the profile's n highest-affinity tags. Ties break
// alphabetically for stable output.
func topInterests(p *UserProfile, n int) []InterestEntry {
	entries := make([]InterestEntry, 0, len(p.TagWeights))
	for tag, w := range p.TagWeights {
		entries = append(entries, InterestEntry{Tag: tag, Weight: w})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Tag < entries[j].Tag
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
