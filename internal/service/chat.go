package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/google/uuid"
)

const (
	maxChatMessage = 1000
	chatPageSize   = 50
)

// SendChatMessage posts a message to a group chat the user belongs to
func (s *Service) SendChatMessage(ctx context.Context, userID, groupID uuid.UUID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)

	v := &validator{}
	v.check(text != "", "message is required")
	v.check(utf8.RuneCountInString(text) <= maxChatMessage, "message must be at most %d characters", maxChatMessage)
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	msg, err := s.Chat.Create(ctx, &models.ChatMessage{
		GroupID:   groupID,
		UserID:    userID,
		Message:   text,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send chat message: %w", err)
	}
	s.metrics.ObserveChatMessage()

	return msg, nil
}

// ChatMessages returns the newest messages of a group chat, oldest first
func (s *Service) ChatMessages(ctx context.Context, userID, groupID uuid.UUID) ([]*models.ChatMessage, error) {
	if err := s.CanReadChat(ctx, userID, groupID); err != nil {
		return nil, err
	}
	messages, err := s.Chat.ListRecent(ctx, groupID, chatPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	for _, m := range messages {
		if m.DisplayName == "" {
			m.DisplayName = s.messages.Get("unknown_user")
		}
	}
	return messages, nil
}

// CanReadChat returns nil when the user may read the group's chat
func (s *Service) CanReadChat(ctx context.Context, userID, groupID uuid.UUID) error {
	_, err := s.requireMember(ctx, groupID, userID)
	return err
}
