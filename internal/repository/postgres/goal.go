package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

type goalRepository struct {
	db *sql.DB
}

// NewGoalRepository creates a new savings goal repository
func NewGoalRepository(db *sql.DB) repository.GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `g.id, g.user_id, g.group_id, g.title, g.description, g.target_amount, g.current_amount,
	g.category, g.deadline, g.is_public, g.last_nudged_at, g.created_at, g.updated_at`

func scanGoal(row interface{ Scan(...any) error }, extra ...any) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	var groupID uuid.NullUUID
	var description sql.NullString
	var deadline, nudged sql.NullTime

	dest := []any{
		&goal.ID,
		&goal.UserID,
		&groupID,
		&goal.Title,
		&description,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.Category,
		&deadline,
		&goal.IsPublic,
		&nudged,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	goal.GroupID = uuidPtr(groupID)
	goal.Description = description.String
	goal.Deadline = timePtr(deadline)
	goal.LastNudgedAt = timePtr(nudged)
	return &goal, nil
}

func (r *goalRepository) Create(ctx context.Context, goal *models.SavingsGoal) (*models.SavingsGoal, error) {
	query := `
		INSERT INTO savings_goals (user_id, group_id, title, description, target_amount, current_amount,
			category, deadline, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.CurrentAmount = 0

	err := r.db.QueryRowContext(ctx, query,
		goal.UserID,
		nullUUID(goal.GroupID),
		goal.Title,
		nullString(goal.Description),
		goal.TargetAmount,
		goal.Category,
		nullTime(goal.Deadline),
		goal.IsPublic,
		goal.CreatedAt,
		goal.UpdatedAt,
	).Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals g WHERE g.id = $1`

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get goal by ID: %w", err)
	}

	return goal, nil
}

// FindByPrefix returns the group's goal whose id starts with prefix. An
// ambiguous prefix matches nothing.
func (r *goalRepository) FindByPrefix(ctx context.Context, groupID uuid.UUID, prefix string) (*models.SavingsGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals g
		WHERE g.group_id = $1 AND g.id::text LIKE $2 || '%'
		LIMIT 2`

	goals, err := r.list(ctx, query, groupID, prefix)
	if err != nil {
		return nil, err
	}
	if len(goals) != 1 {
		return nil, nil
	}

	return goals[0], nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.SavingsGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals g
		WHERE g.user_id = $1
		ORDER BY g.created_at DESC`

	return r.list(ctx, query, userID)
}

func (r *goalRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.SavingsGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM savings_goals g
		WHERE g.group_id = $1
		ORDER BY g.created_at DESC`

	return r.list(ctx, query, groupID)
}

func (r *goalRepository) ListNudgeCandidates(ctx context.Context, nudgedBefore time.Time) ([]*repository.NudgeCandidate, error) {
	query := `
		SELECT ` + goalColumns + `, s.chat_id
		FROM savings_goals g
		INNER JOIN savings_groups s ON s.id = g.group_id
		WHERE s.chat_id IS NOT NULL
			AND g.deadline IS NOT NULL
			AND g.current_amount < g.target_amount
			AND (g.last_nudged_at IS NULL OR g.last_nudged_at < $1)
		ORDER BY g.deadline ASC`

	rows, err := r.db.QueryContext(ctx, query, nudgedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query nudge candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*repository.NudgeCandidate
	for rows.Next() {
		var chatID int64
		goal, err := scanGoal(rows, &chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nudge candidate: %w", err)
		}
		candidates = append(candidates, &repository.NudgeCandidate{Goal: goal, ChatID: chatID})
	}

	return candidates, rows.Err()
}

func (r *goalRepository) MarkNudged(ctx context.Context, goalID uuid.UUID, at time.Time) error {
	query := `UPDATE savings_goals SET last_nudged_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, goalID, at)
	if err != nil {
		return fmt.Errorf("failed to mark goal nudged: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *goalRepository) list(ctx context.Context, query string, args ...any) ([]*models.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.SavingsGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}

	return goals, rows.Err()
}
