package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an append-only message in a group chat
type ChatMessage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GroupID     uuid.UUID `json:"group_id" db:"group_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	DisplayName string    `json:"display_name"`
}
