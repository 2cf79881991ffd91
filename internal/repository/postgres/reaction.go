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

type reactionRepository struct {
	db *sql.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *sql.DB) repository.ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(ctx context.Context, reaction *models.Reaction) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	remove := `
		DELETE FROM reactions
		WHERE user_id = $1 AND target_type = $2 AND target_id = $3 AND reaction_type = $4`

	result, err := tx.ExecContext(ctx, remove, reaction.UserID, reaction.TargetType, reaction.TargetID, reaction.Kind)
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	present := rowsAffected == 0
	if present {
		insert := `
			INSERT INTO reactions (user_id, target_type, target_id, reaction_type, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`

		reaction.CreatedAt = time.Now()
		err := tx.QueryRowContext(ctx, insert,
			reaction.UserID,
			reaction.TargetType,
			reaction.TargetID,
			reaction.Kind,
			reaction.CreatedAt,
		).Scan(&reaction.ID)
		if err != nil {
			return false, fmt.Errorf("failed to add reaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit reaction: %w", err)
	}

	return present, nil
}

func (r *reactionRepository) ListByTarget(ctx context.Context, target models.ReactionTarget, targetID uuid.UUID) ([]*models.Reaction, error) {
	query := `
		SELECT r.id, r.user_id, r.target_type, r.target_id, r.reaction_type, r.created_at, COALESCE(p.display_name, '')
		FROM reactions r
		LEFT JOIN profiles p ON p.user_id = r.user_id
		WHERE r.target_type = $1 AND r.target_id = $2
		ORDER BY r.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reactions: %w", err)
	}
	defer rows.Close()

	var reactions []*models.Reaction
	for rows.Next() {
		reaction := &models.Reaction{}
		if err := rows.Scan(
			&reaction.ID,
			&reaction.UserID,
			&reaction.TargetType,
			&reaction.TargetID,
			&reaction.Kind,
			&reaction.CreatedAt,
			&reaction.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, reaction)
	}

	return reactions, rows.Err()
}
