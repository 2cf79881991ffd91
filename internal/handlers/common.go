package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/croowa/internal/messages"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/service"
)

// errNotAGroup is returned for group commands sent in a private chat
var errNotAGroup = errors.New("command requires a group chat")

// progressBarWidth is the number of cells in a rendered progress bar
const progressBarWidth = 10

// reply sends a Markdown message to the chat the command came from.
func reply(bot *tgbotapi.BotAPI, message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// replyError answers errors the user can act on with a specific message and
// returns nil. Any other error is returned for the router to report.
func replyError(bot *tgbotapi.BotAPI, message *tgbotapi.Message, catalog *messages.Catalog, err error) error {
	var key string
	switch {
	case service.IsValidation(err):
		return reply(bot, message, "❌ "+Escape(err.Error()))
	case errors.Is(err, errNotAGroup):
		key = "errors.not_a_group"
	case errors.Is(err, service.ErrChatNotLinked):
		key = "errors.no_group"
	case errors.Is(err, service.ErrInviteCodeNotFound):
		key = "errors.invite_not_found"
	case errors.Is(err, service.ErrAlreadyMember):
		key = "errors.already_member"
	case errors.Is(err, service.ErrGoalNotFound):
		key = "errors.goal_not_found"
	default:
		return err
	}
	return reply(bot, message, catalog.Get(key))
}

// Escape makes user-supplied text safe inside a Markdown message
func Escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func isGroupChat(message *tgbotapi.Message) bool {
	return message.Chat != nil && (message.Chat.IsGroup() || message.Chat.IsSuperGroup())
}

// sender resolves the Telegram author of a message to a user.
func sender(ctx context.Context, svc *service.Service, message *tgbotapi.Message) (*models.User, error) {
	from := message.From
	return svc.EnsureTelegramUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
}

// linkedGroup resolves the sender and the group already linked to the chat,
// adding the sender as a member on first contact.
func linkedGroup(ctx context.Context, svc *service.Service, message *tgbotapi.Message) (*models.User, *models.Group, error) {
	if !isGroupChat(message) {
		return nil, nil, errNotAGroup
	}
	if _, err := svc.ChatGroup(ctx, message.Chat.ID); err != nil {
		return nil, nil, err
	}
	return chatGroup(ctx, svc, message)
}

// chatGroup resolves the sender and the chat's group, creating the group on
// first use.
func chatGroup(ctx context.Context, svc *service.Service, message *tgbotapi.Message) (*models.User, *models.Group, error) {
	if !isGroupChat(message) {
		return nil, nil, errNotAGroup
	}
	user, err := sender(ctx, svc, message)
	if err != nil {
		return nil, nil, err
	}
	group, err := svc.EnsureChatGroup(ctx, message.Chat.ID, message.Chat.Title, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, group, nil
}

// progressBar renders percentage (0-100) as a row of filled and empty cells
func progressBar(percentage float64) string {
	filled := int(percentage / 100 * progressBarWidth)
	filled = max(0, min(progressBarWidth, filled))
	return strings.Repeat("▓", filled) + strings.Repeat("░", progressBarWidth-filled)
}
