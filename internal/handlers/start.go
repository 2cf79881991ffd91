package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/croowa/internal/messages"
)

// StartHandler handles the /start command
type StartHandler struct {
	messages *messages.Catalog
	logger   *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(catalog *messages.Catalog, logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		messages: catalog,
		logger:   logger,
	}
}

// Handle processes the /start command
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := reply(bot, message, h.messages.Get("bot.start")); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent start message")

	return nil
}
