package models

import (
	"time"

	"github.com/google/uuid"
)

// ReactionTarget is the kind of entity a reaction is attached to
type ReactionTarget string

const (
	TargetGoal         ReactionTarget = "goal"
	TargetContribution ReactionTarget = "contribution"
	TargetGroup        ReactionTarget = "group"
)

// Valid reports whether t is a known target type
func (t ReactionTarget) Valid() bool {
	switch t {
	case TargetGoal, TargetContribution, TargetGroup:
		return true
	}
	return false
}

// ReactionKind is the reaction itself
type ReactionKind string

const (
	ReactionLike      ReactionKind = "like"
	ReactionLove      ReactionKind = "love"
	ReactionCelebrate ReactionKind = "celebrate"
	ReactionSmile     ReactionKind = "smile"
)

// Valid reports whether k is a known reaction kind
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionCelebrate, ReactionSmile:
		return true
	}
	return false
}

// Reaction tags a goal, contribution or group. A user has at most one
// reaction of each kind per target.
type Reaction struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      uuid.UUID      `json:"user_id" db:"user_id"`
	TargetType  ReactionTarget `json:"target_type" db:"target_type"`
	TargetID    uuid.UUID      `json:"target_id" db:"target_id"`
	Kind        ReactionKind   `json:"reaction_type" db:"reaction_type"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	DisplayName string         `json:"display_name,omitempty"`
}

// Follow is a follower -> following edge between users
type Follow struct {
	FollowerID  uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowingID uuid.UUID `json:"following_id" db:"following_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
