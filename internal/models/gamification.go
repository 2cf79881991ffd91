package models

import (
	"time"

	"github.com/google/uuid"
)

// GamificationState holds a user's points, level and streak
type GamificationState struct {
	UserID             uuid.UUID  `json:"user_id" db:"user_id"`
	TotalPoints        int        `json:"total_points" db:"total_points"`
	CurrentLevel       int        `json:"current_level" db:"current_level"`
	StreakDays         int        `json:"streak_days" db:"streak_days"`
	LastContributionOn *time.Time `json:"last_contribution_on,omitempty" db:"last_contribution_on"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	DisplayName        string     `json:"display_name,omitempty"`
}

// NewGamificationState returns the starting state for a user
func NewGamificationState(userID uuid.UUID) *GamificationState {
	return &GamificationState{UserID: userID, CurrentLevel: 1}
}

// Achievement is an entry in the static achievement catalog
type Achievement struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Code        string     `json:"code" db:"code"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Icon        string     `json:"icon" db:"icon"`
	Points      int        `json:"points" db:"points"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}
