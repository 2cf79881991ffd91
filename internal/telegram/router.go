package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/croowa/internal/messages"
	"github.com/Kerhoff/croowa/internal/metrics"
)

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	messages *messages.Catalog
	metrics  *metrics.Metrics
	handlers map[string]CommandHandler
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// NewRouter creates a new message router. m may be nil.
func NewRouter(logger *logrus.Logger, catalog *messages.Catalog, m *metrics.Metrics) *Router {
	return &Router{
		logger:   logger,
		messages: catalog,
		metrics:  m,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	// Only process text commands from users
	if message.Text == "" || message.From == nil || !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	log := r.logger.WithFields(logrus.Fields{
		"command": command,
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	})
	log.Debug("Received command")

	handler, exists := r.handlers[command]
	if !exists {
		log.Warn("Unknown command")
		r.send(bot, message.Chat.ID, r.messages.Get("errors.unknown_command"))
		return
	}

	err := handler.Handle(bot, message, args)
	r.metrics.ObserveCommand(command, err == nil)
	if err != nil {
		log.WithError(err).Error("Command handler failed")
		r.send(bot, message.Chat.ID, r.messages.Get("errors.generic"))
	}
}

func (r *Router) send(bot *tgbotapi.BotAPI, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger.WithError(err).Error("Failed to send message")
	}
}
