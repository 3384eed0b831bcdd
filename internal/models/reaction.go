package models

import "time"

// ReactionKind is the sentiment a user attaches to a post or comment.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
)

// Valid reports whether k is one of the supported reaction kinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// TargetType identifies what a reaction is attached to.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Reaction represents a user's reaction on a post or comment (PostgreSQL).
// The unique index guarantees at most one reaction per (actor, target);
// changing the kind updates the existing row.
type Reaction struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	ActorID    uint         `json:"actor_id" gorm:"index;uniqueIndex:idx_actor_target_reaction"`
	TargetID   string       `json:"target_id" gorm:"index;uniqueIndex:idx_actor_target_reaction"` // post ObjectID hex or comment ID as string
	TargetType TargetType   `json:"target_type" gorm:"size:20;uniqueIndex:idx_actor_target_reaction"`
	Kind       ReactionKind `json:"kind" gorm:"size:20"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// UpsertReactionRequest defines the request body for reacting to a target
type UpsertReactionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like love laugh wow sad angry"`
}

// ReactionSummary is the aggregate returned after every reaction mutation
// and by the summary endpoint.
type ReactionSummary struct {
	TargetID       string                 `json:"target_id"`
	TargetType     TargetType             `json:"target_type"`
	Total          int64                  `json:"total_reactions"`
	ByKind         map[ReactionKind]int64 `json:"reactions_by_type"`
	ViewerReaction *ReactionKind          `json:"my_reaction,omitempty"`
}
