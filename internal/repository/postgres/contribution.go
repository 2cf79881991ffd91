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

type contributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *sql.DB) repository.ContributionRepository {
	return &contributionRepository{db: db}
}

// Record inserts the contribution and increments the goal's current amount
// server-side, so concurrent contributions cannot overwrite each other.
func (r *contributionRepository) Record(ctx context.Context, c *models.Contribution) (*models.SavingsGoal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	insert := `
		INSERT INTO goal_contributions (goal_id, user_id, amount, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = tx.QueryRowContext(ctx, insert,
		c.GoalID,
		c.UserID,
		c.Amount,
		nullString(c.Message),
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contribution: %w", err)
	}

	update := `
		UPDATE savings_goals g
		SET current_amount = g.current_amount + $2, updated_at = $3
		WHERE g.id = $1
		RETURNING ` + goalColumns

	goal, err := scanGoal(tx.QueryRowContext(ctx, update, c.GoalID, c.Amount, c.CreatedAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update goal amount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contribution: %w", err)
	}

	return goal, nil
}

func (r *contributionRepository) ListByGoal(ctx context.Context, goalID uuid.UUID, limit int) ([]*models.Contribution, error) {
	query := `
		SELECT c.id, c.goal_id, c.user_id, c.amount, c.message, c.created_at, COALESCE(p.display_name, '')
		FROM goal_contributions c
		LEFT JOIN profiles p ON p.user_id = c.user_id
		WHERE c.goal_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, goalID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c := &models.Contribution{}
		var message sql.NullString
		if err := rows.Scan(
			&c.ID,
			&c.GoalID,
			&c.UserID,
			&c.Amount,
			&message,
			&c.CreatedAt,
			&c.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.Message = message.String
		contributions = append(contributions, c)
	}

	return contributions, rows.Err()
}

func (r *contributionRepository) TotalsByUserForGoal(ctx context.Context, goalID uuid.UUID) ([]models.ContributionTotal, error) {
	query := `
		SELECT user_id, SUM(amount)
		FROM goal_contributions
		WHERE goal_id = $1
		GROUP BY user_id`

	return r.totals(ctx, query, goalID)
}

func (r *contributionRepository) TotalsByUserForGroup(ctx context.Context, groupID uuid.UUID) ([]models.ContributionTotal, error) {
	query := `
		SELECT c.user_id, SUM(c.amount)
		FROM goal_contributions c
		INNER JOIN savings_goals g ON g.id = c.goal_id
		WHERE g.group_id = $1
		GROUP BY c.user_id`

	return r.totals(ctx, query, groupID)
}

func (r *contributionRepository) TotalsByUser(ctx context.Context) ([]models.ContributionTotal, error) {
	query := `
		SELECT user_id, SUM(amount)
		FROM goal_contributions
		GROUP BY user_id`

	return r.totals(ctx, query)
}

func (r *contributionRepository) totals(ctx context.Context, query string, args ...any) ([]models.ContributionTotal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contribution totals: %w", err)
	}
	defer rows.Close()

	var totals []models.ContributionTotal
	for rows.Next() {
		var t models.ContributionTotal
		if err := rows.Scan(&t.Key, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan contribution total: %w", err)
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}
