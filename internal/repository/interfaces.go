package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	// Lookups return (nil, nil) instead.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint rejects a write
	ErrConflict = errors.New("record already exists")
	// ErrChatLinked is returned when a group is created for a Telegram chat
	// that another group is already linked to
	ErrChatLinked = errors.New("chat is already linked to a group")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Profile, error)
	Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// GroupRepository defines the interface for savings group operations
type GroupRepository interface {
	// Create stores the group and makes its creator an admin member
	Create(ctx context.Context, group *models.Group) (*models.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Group, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID, role models.MemberRole) error
	GetMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error)
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]*models.GroupMember, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Group, error)
	// ListPublic returns public groups the user is not a member of, with
	// member counts and totals. uuid.Nil excludes nothing.
	ListPublic(ctx context.Context, excludeUserID uuid.UUID) ([]*models.Group, error)
	TotalContributions(ctx context.Context, groupID uuid.UUID) (int64, error)
}

// GoalRepository defines the interface for savings goal operations
type GoalRepository interface {
	Create(ctx context.Context, goal *models.SavingsGoal) (*models.SavingsGoal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SavingsGoal, error)
	FindByPrefix(ctx context.Context, groupID uuid.UUID, prefix string) (*models.SavingsGoal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.SavingsGoal, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.SavingsGoal, error)
	ListNudgeCandidates(ctx context.Context, nudgedBefore time.Time) ([]*NudgeCandidate, error)
	MarkNudged(ctx context.Context, goalID uuid.UUID, at time.Time) error
}

// NudgeCandidate is an unfinished group goal with a deadline whose group is
// linked to a Telegram chat.
type NudgeCandidate struct {
	Goal   *models.SavingsGoal
	ChatID int64
}

// ContributionRepository defines the interface for contribution operations
type ContributionRepository interface {
	// Record inserts the contribution and adds its amount to the goal in one
	// transaction, returning the updated goal.
	Record(ctx context.Context, c *models.Contribution) (*models.SavingsGoal, error)
	ListByGoal(ctx context.Context, goalID uuid.UUID, limit int) ([]*models.Contribution, error)
	TotalsByUserForGoal(ctx context.Context, goalID uuid.UUID) ([]models.ContributionTotal, error)
	TotalsByUserForGroup(ctx context.Context, groupID uuid.UUID) ([]models.ContributionTotal, error)
	TotalsByUser(ctx context.Context) ([]models.ContributionTotal, error)
}

// MilestoneRepository defines the interface for unlocked goal milestones
type MilestoneRepository interface {
	ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*models.MilestoneRecord, error)
	// Record stores a milestone and reports whether it was new
	Record(ctx context.Context, rec *models.MilestoneRecord) (bool, error)
}

// ChatRepository defines the interface for group chat messages
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error)
	// ListRecent returns the newest limit messages in ascending order
	ListRecent(ctx context.Context, groupID uuid.UUID, limit int) ([]*models.ChatMessage, error)
}

// GamificationRepository defines the interface for points, levels and streaks
type GamificationRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.GamificationState, error)
	// Init stores the starting state for a user who has none
	Init(ctx context.Context, userID uuid.UUID) error
	// Reward runs fn in one transaction holding the lock on the user's
	// state. Rewards for one user are applied one after another, and nothing
	// fn wrote is kept when it returns an error.
	Reward(ctx context.Context, userID uuid.UUID, fn func(tx RewardTx) error) error
	Top(ctx context.Context, limit int) ([]*models.GamificationState, error)
}

// RewardTx is the storage seen inside a reward transaction
type RewardTx interface {
	// State returns the locked user's current state
	State(ctx context.Context) (*models.GamificationState, error)
	Milestones() MilestoneRepository
	Achievements() AchievementRepository
	Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	// Credit adds points to the stored total, raises the level to match and
	// stores the streak. It returns the state after the update.
	Credit(ctx context.Context, points, streakDays int, lastContributionOn *time.Time) (*models.GamificationState, error)
}

// AchievementRepository defines the interface for the achievement catalog
type AchievementRepository interface {
	List(ctx context.Context) ([]*models.Achievement, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Achievement, error)
	// Unlock records the achievement for the user and reports whether it was new
	Unlock(ctx context.Context, userID uuid.UUID, code string, at time.Time) (bool, error)
}

// ReactionRepository defines the interface for reactions
type ReactionRepository interface {
	// Toggle removes the reaction if it exists and adds it otherwise. It
	// reports whether the reaction is present afterwards.
	Toggle(ctx context.Context, reaction *models.Reaction) (bool, error)
	ListByTarget(ctx context.Context, target models.ReactionTarget, targetID uuid.UUID) ([]*models.Reaction, error)
}

// FriendRepository defines the interface for follow relationships
type FriendRepository interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error)
}
