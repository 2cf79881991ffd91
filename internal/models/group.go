package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole is a member's role within a group
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Group is a savings group. Private groups are joined with the invite
// code; a group may also be linked to a Telegram group chat.
type Group struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	CreatedByID uuid.UUID `json:"created_by" db:"created_by"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	ChatID      *int64    `json:"chat_id,omitempty" db:"chat_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Derived, filled by listing queries.
	Role        MemberRole `json:"role,omitempty"`
	MemberCount int        `json:"member_count,omitempty"`
	TotalSaved  int64      `json:"total_saved,omitempty"`
}

// GroupMember is the membership of a user in a group
type GroupMember struct {
	GroupID     uuid.UUID  `json:"group_id" db:"group_id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Role        MemberRole `json:"role" db:"role"`
	JoinedAt    time.Time  `json:"joined_at" db:"joined_at"`
	DisplayName string     `json:"display_name"`
}

// IsAdmin reports whether the member administers the group
func (m *GroupMember) IsAdmin() bool {
	return m.Role == RoleAdmin
}
