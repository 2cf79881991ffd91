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

type achievementRepository struct {
	db querier
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *sql.DB) repository.AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	query := `
		SELECT a.id, a.code, a.name, a.description, a.icon, a.points, NULL::timestamptz
		FROM achievements a
		ORDER BY a.points ASC, a.code ASC`

	return r.list(ctx, query)
}

func (r *achievementRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Achievement, error) {
	query := `
		SELECT a.id, a.code, a.name, a.description, a.icon, a.points, ua.unlocked_at
		FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = $1
		ORDER BY a.points ASC, a.code ASC`

	return r.list(ctx, query, userID)
}

func (r *achievementRepository) list(ctx context.Context, query string, args ...any) ([]*models.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*models.Achievement
	for rows.Next() {
		a := &models.Achievement{}
		var unlocked sql.NullTime
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Icon, &a.Points, &unlocked); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.UnlockedAt = timePtr(unlocked)
		achievements = append(achievements, a)
	}

	return achievements, rows.Err()
}

func (r *achievementRepository) Unlock(ctx context.Context, userID uuid.UUID, code string, at time.Time) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		SELECT $1, id, $3 FROM achievements WHERE code = $2
		ON CONFLICT (user_id, achievement_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, userID, code, at)
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement %s: %w", code, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}
