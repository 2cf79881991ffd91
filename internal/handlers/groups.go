package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/croowa/internal/messages"
	"github.com/Kerhoff/croowa/internal/money"
	"github.com/Kerhoff/croowa/internal/savings"
	"github.com/Kerhoff/croowa/internal/service"
)

// rankingLines renders ranked entries below header
func rankingLines(catalog *messages.Catalog, currency, header string, entries []savings.RankedEntry) string {
	lines := []string{header}
	if len(entries) == 0 {
		lines = append(lines, catalog.Get("bot.ranking_empty"))
	}
	for _, e := range entries {
		lines = append(lines, catalog.Format("bot.ranking_line", e.Rank, Escape(e.DisplayName), money.Format(e.Total, currency)))
	}
	return strings.Join(lines, "\n")
}

// ---------------------------------------------------------------------------
// RankingHandler – /ranking
// ---------------------------------------------------------------------------

// RankingHandler ranks the members of the chat's group by what they saved.
type RankingHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewRankingHandler(svc *service.Service, logger *logrus.Logger) *RankingHandler {
	return &RankingHandler{svc: svc, logger: logger}
}

func (h *RankingHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()
	ctx := context.Background()

	user, group, err := linkedGroup(ctx, h.svc, message)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	ranking, err := h.svc.GroupRanking(ctx, user.ID, group.ID)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	header := catalog.Format("bot.ranking_header", Escape(group.Name))
	return reply(bot, message, rankingLines(catalog, h.svc.Currency(), header, ranking))
}

// ---------------------------------------------------------------------------
// TopHandler – /top
// ---------------------------------------------------------------------------

// TopHandler shows the global savings leaderboard.
type TopHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewTopHandler(svc *service.Service, logger *logrus.Logger) *TopHandler {
	return &TopHandler{svc: svc, logger: logger}
}

func (h *TopHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()

	board, err := h.svc.SavingsLeaderboard(context.Background())
	if err != nil {
		return err
	}

	return reply(bot, message, rankingLines(catalog, h.svc.Currency(), catalog.Get("bot.top_header"), board))
}

// ---------------------------------------------------------------------------
// InviteHandler – /invite
// ---------------------------------------------------------------------------

// InviteHandler shows the invite code of the chat's group.
type InviteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewInviteHandler(svc *service.Service, logger *logrus.Logger) *InviteHandler {
	return &InviteHandler{svc: svc, logger: logger}
}

func (h *InviteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()

	_, group, err := linkedGroup(context.Background(), h.svc, message)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	return reply(bot, message, catalog.Format("bot.invite", Escape(group.Name), group.InviteCode))
}

// ---------------------------------------------------------------------------
// JoinHandler – /join <code>
// ---------------------------------------------------------------------------

// JoinHandler adds the sender to a group by invite code. It works in any
// chat, including private ones.
type JoinHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewJoinHandler(svc *service.Service, logger *logrus.Logger) *JoinHandler {
	return &JoinHandler{svc: svc, logger: logger}
}

func (h *JoinHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()
	if len(args) == 0 {
		return reply(bot, message, catalog.Get("errors.missing_fields"))
	}

	ctx := context.Background()

	user, err := sender(ctx, h.svc, message)
	if err != nil {
		return err
	}

	group, err := h.svc.JoinByInviteCode(ctx, user.ID, args[0])
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":  message.Chat.ID,
		"user_id":  user.ID,
		"group_id": group.ID,
	}).Info("User joined group from chat")

	return reply(bot, message, catalog.Format("bot.joined", Escape(group.Name)))
}

// ---------------------------------------------------------------------------
// MeHandler – /me
// ---------------------------------------------------------------------------

// MeHandler shows the sender's points, level and streak.
type MeHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewMeHandler(svc *service.Service, logger *logrus.Logger) *MeHandler {
	return &MeHandler{svc: svc, logger: logger}
}

func (h *MeHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	user, err := sender(ctx, h.svc, message)
	if err != nil {
		return err
	}

	status, err := h.svc.GamificationStatus(ctx, user.ID)
	if err != nil {
		return err
	}

	st := status.State
	return reply(bot, message, h.svc.Messages().Format("bot.me",
		Escape(displayName(ctx, h.svc, user)),
		st.CurrentLevel, st.TotalPoints,
		status.Progress.PointsInLevel, status.Progress.PointsForLevel,
		st.StreakDays))
}
