package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authentication identity. People sign up with email and
// password through the API, or are created implicitly the first time they
// talk to the Telegram bot.
type User struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Email            string    `json:"email,omitempty" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	TelegramID       *int64    `json:"telegram_id,omitempty" db:"telegram_id"`
	TelegramUsername string    `json:"telegram_username,omitempty" db:"telegram_username"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Profile holds the display attributes of a user, separate from the
// identity used to sign in.
type Profile struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Bio         string    `json:"bio" db:"bio"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	Location    string    `json:"location" db:"location"`
	Website     string    `json:"website" db:"website"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NameOr returns the display name, or fallback when none is set
func (p *Profile) NameOr(fallback string) string {
	if p == nil || p.DisplayName == "" {
		return fallback
	}
	return p.DisplayName
}

// UserStats are the per-user aggregates computed by get_user_stats.
type UserStats struct {
	TotalSaved     int64 `json:"total_saved"`
	GoalsCount     int   `json:"goals_count"`
	CompletedGoals int   `json:"completed_goals"`
	Contributions  int   `json:"contributions"`
	GroupsCreated  int   `json:"groups_created"`
	Followers      int   `json:"followers"`
	Following      int   `json:"following"`
}
