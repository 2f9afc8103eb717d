// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package models

import "time"

// InteractionType classifies a user-post interaction event.
type InteractionType string

const (
	// InteractionView indicates the post was viewed.
	InteractionView InteractionType = "view"
	// InteractionLike indicates the post was liked.
	InteractionLike InteractionType = "like"
	// InteractionComment indicates the user commented on the post.
	InteractionComment InteractionType = "comment"
	// InteractionShare indicates the post was shared.
	InteractionShare InteractionType = "share"
)

// Weight returns the fixed affinity weight for this interaction type.
// Stronger signals weigh more. Unknown types fall back to the view weight
// so a new event type degrades gracefully instead of being dropped.
func (t InteractionType) Weight() float64 {
	switch t {
	case InteractionView:
		return 1.0
	case InteractionLike:
		return 3.0
	case InteractionComment:
		return 4.0
	case InteractionShare:
		return 5.0
	default:
		return 1.0
	}
}

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionComment, InteractionShare:
		return true
	default:
		return false
	}
}

// Interaction is a single user-post interaction event. The interaction
// log is append-only; user profiles are derived aggregates and are never
// mutated independently of the log.
type Interaction struct {
	// UserID is the interacting user.
	UserID int64 `json:"user_id"`

	// PostID is the post interacted with.
	PostID int64 `json:"post_id"`

	// Type classifies the interaction.
	Type InteractionType `json:"type"`

	// Weight is the affinity weight. Zero means "use the type's fixed weight".
	Weight float64 `json:"weight,omitempty"`

	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`
}

// EffectiveWeight returns the explicit weight when set, otherwise the
// type's fixed weight.
func (i *Interaction) EffectiveWeight() float64 {
	if i.Weight > 0 {
		return i.Weight
	}
	return i.Type.Weight()
}
