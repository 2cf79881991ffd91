package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/croowa/internal/messages"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	messages *messages.Catalog
	logger   *logrus.Logger
}

func NewHelpHandler(catalog *messages.Catalog, logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{messages: catalog, logger: logger}
}

func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := reply(bot, message, h.messages.Get("bot.help")); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
