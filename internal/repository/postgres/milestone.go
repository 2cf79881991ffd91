package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

type milestoneRepository struct {
	db querier
}

// NewMilestoneRepository creates a new goal milestone repository
func NewMilestoneRepository(db *sql.DB) repository.MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*models.MilestoneRecord, error) {
	query := `
		SELECT goal_id, percentage, unlocked_at, unlocked_by
		FROM goal_milestones
		WHERE goal_id = $1
		ORDER BY percentage ASC`

	rows, err := r.db.QueryContext(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	var records []*models.MilestoneRecord
	for rows.Next() {
		rec := &models.MilestoneRecord{}
		if err := rows.Scan(&rec.GoalID, &rec.Percentage, &rec.UnlockedAt, &rec.UnlockedByID); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *milestoneRepository) Record(ctx context.Context, rec *models.MilestoneRecord) (bool, error) {
	query := `
		INSERT INTO goal_milestones (goal_id, percentage, unlocked_at, unlocked_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (goal_id, percentage) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, rec.GoalID, rec.Percentage, rec.UnlockedAt, rec.UnlockedByID)
	if err != nil {
		return false, fmt.Errorf("failed to record milestone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}
