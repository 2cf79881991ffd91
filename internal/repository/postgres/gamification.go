package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/croowa/internal/gamification"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

const stateColumns = `user_id, total_points, current_level, streak_days, last_contribution_on, updated_at`

// initStateQuery inserts the starting row; the column defaults are level 1
// with no points and no streak.
const initStateQuery = `
	INSERT INTO user_gamification (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING`

type gamificationRepository struct {
	db *sql.DB
}

// NewGamificationRepository creates a new gamification state repository
func NewGamificationRepository(db *sql.DB) repository.GamificationRepository {
	return &gamificationRepository{db: db}
}

func scanState(row interface{ Scan(...any) error }, extra ...any) (*models.GamificationState, error) {
	state := &models.GamificationState{}
	var last sql.NullTime
	dest := append([]any{
		&state.UserID,
		&state.TotalPoints,
		&state.CurrentLevel,
		&state.StreakDays,
		&last,
		&state.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	state.LastContributionOn = timePtr(last)
	return state, nil
}

func (r *gamificationRepository) Get(ctx context.Context, userID uuid.UUID) (*models.GamificationState, error) {
	query := `SELECT ` + stateColumns + ` FROM user_gamification WHERE user_id = $1`

	state, err := scanState(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gamification state: %w", err)
	}

	return state, nil
}

func (r *gamificationRepository) Init(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, initStateQuery, userID); err != nil {
		return fmt.Errorf("failed to create gamification state: %w", err)
	}
	return nil
}

// Reward locks the user's row with SELECT ... FOR UPDATE for the whole
// transaction, so a concurrent reward for the same user waits for this one
// to commit or roll back.
func (r *gamificationRepository) Reward(ctx context.Context, userID uuid.UUID, fn func(tx repository.RewardTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, initStateQuery, userID); err != nil {
		return fmt.Errorf("failed to create gamification state: %w", err)
	}

	if err := fn(&rewardTx{tx: tx, userID: userID}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rewards: %w", err)
	}

	return nil
}

func (r *gamificationRepository) Top(ctx context.Context, limit int) ([]*models.GamificationState, error) {
	query := `
		SELECT s.user_id, s.total_points, s.current_level, s.streak_days, s.last_contribution_on, s.updated_at,
			COALESCE(p.display_name, '')
		FROM user_gamification s
		LEFT JOIN profiles p ON p.user_id = s.user_id
		ORDER BY s.total_points DESC, s.user_id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query points leaderboard: %w", err)
	}
	defer rows.Close()

	var states []*models.GamificationState
	for rows.Next() {
		var name string
		state, err := scanState(rows, &name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gamification state: %w", err)
		}
		state.DisplayName = name
		states = append(states, state)
	}

	return states, rows.Err()
}

// ---------------------------------------------------------------------------

type rewardTx struct {
	tx     *sql.Tx
	userID uuid.UUID
}

func (t *rewardTx) State(ctx context.Context) (*models.GamificationState, error) {
	query := `SELECT ` + stateColumns + ` FROM user_gamification WHERE user_id = $1 FOR UPDATE`

	state, err := scanState(t.tx.QueryRowContext(ctx, query, t.userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock gamification state: %w", err)
	}
	return state, nil
}

func (t *rewardTx) Milestones() repository.MilestoneRepository {
	return &milestoneRepository{db: t.tx}
}

func (t *rewardTx) Achievements() repository.AchievementRepository {
	return &achievementRepository{db: t.tx}
}

func (t *rewardTx) Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	return userStats(ctx, t.tx, userID)
}

// Credit increments the total on the server. The level is derived from the
// new total in the same statement and never goes down.
func (t *rewardTx) Credit(ctx context.Context, points, streakDays int, lastContributionOn *time.Time) (*models.GamificationState, error) {
	query := `
		UPDATE user_gamification
		SET total_points = total_points + $2,
			current_level = GREATEST(current_level, (total_points + $2) / $3 + 1),
			streak_days = $4,
			last_contribution_on = $5,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + stateColumns

	state, err := scanState(t.tx.QueryRowContext(ctx, query,
		t.userID,
		points,
		gamification.PointsPerLevel,
		streakDays,
		nullTime(lastContributionOn),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}
	return state, nil
}
