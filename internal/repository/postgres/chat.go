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

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new group chat repository
func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	query := `
		INSERT INTO group_chat_messages (group_id, user_id, message, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	err := r.db.QueryRowContext(ctx, query,
		msg.GroupID,
		msg.UserID,
		msg.Message,
		msg.CreatedAt,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create chat message: %w", err)
	}

	return msg, nil
}

func (r *chatRepository) ListRecent(ctx context.Context, groupID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, group_id, user_id, message, created_at, display_name
		FROM (
			SELECT m.id, m.group_id, m.user_id, m.message, m.created_at, COALESCE(p.display_name, '') AS display_name
			FROM group_chat_messages m
			LEFT JOIN profiles p ON p.user_id = m.user_id
			WHERE m.group_id = $1
			ORDER BY m.created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		if err := rows.Scan(
			&msg.ID,
			&msg.GroupID,
			&msg.UserID,
			&msg.Message,
			&msg.CreatedAt,
			&msg.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
