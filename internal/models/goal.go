package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a savings goal
type Category string

const (
	CategoryTravel        Category = "travel"
	CategoryEducation     Category = "education"
	CategoryHealth        Category = "health"
	CategoryEntertainment Category = "entertainment"
	CategoryTechnology    Category = "technology"
	CategoryShopping      Category = "shopping"
	CategoryEvent         Category = "event"
	CategoryGift          Category = "gift"
	CategoryCar           Category = "car"
	CategoryHome          Category = "home"
	CategoryOther         Category = "other"
)

// Categories lists every valid category
var Categories = []Category{
	CategoryTravel, CategoryEducation, CategoryHealth, CategoryEntertainment,
	CategoryTechnology, CategoryShopping, CategoryEvent, CategoryGift,
	CategoryCar, CategoryHome, CategoryOther,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SavingsGoal is a savings target. Amounts are in minor currency units.
// CurrentAmount only changes by recording contributions and may exceed
// TargetAmount.
type SavingsGoal struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	GroupID       *uuid.UUID `json:"group_id,omitempty" db:"group_id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	TargetAmount  int64      `json:"target_amount" db:"target_amount"`
	CurrentAmount int64      `json:"current_amount" db:"current_amount"`
	Category      Category   `json:"category" db:"category"`
	Deadline      *time.Time `json:"deadline,omitempty" db:"deadline"`
	IsPublic      bool       `json:"is_public" db:"is_public"`
	LastNudgedAt  *time.Time `json:"-" db:"last_nudged_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// ShortIDLength is the number of id characters used to reference a goal in
// chat commands.
const ShortIDLength = 8

// ShortID returns the abbreviated id shown in chat
func (g *SavingsGoal) ShortID() string {
	return g.ID.String()[:ShortIDLength]
}

// IsCompleted returns true once the target has been reached
func (g *SavingsGoal) IsCompleted() bool {
	return g.CurrentAmount >= g.TargetAmount
}

// Contribution is an immutable addition of funds to a goal
type Contribution struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GoalID      uuid.UUID `json:"goal_id" db:"goal_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Amount      int64     `json:"amount" db:"amount"`
	Message     string    `json:"message,omitempty" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	DisplayName string    `json:"display_name,omitempty"`
}

// ContributionTotal is a summed amount for one key (user or group), as
// returned by aggregate queries.
type ContributionTotal struct {
	Key    uuid.UUID
	Amount int64
}

// MilestoneRecord is the first time a goal crossed a percentage threshold
type MilestoneRecord struct {
	GoalID       uuid.UUID `json:"goal_id" db:"goal_id"`
	Percentage   int       `json:"percentage" db:"percentage"`
	UnlockedAt   time.Time `json:"unlocked_at" db:"unlocked_at"`
	UnlockedByID uuid.UUID `json:"unlocked_by" db:"unlocked_by"`
}
