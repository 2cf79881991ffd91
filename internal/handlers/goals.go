package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/money"
	"github.com/Kerhoff/croowa/internal/savings"
	"github.com/Kerhoff/croowa/internal/service"
)

// displayName returns the user's profile name for chat messages.
func displayName(ctx context.Context, svc *service.Service, user *models.User) string {
	fallback := svc.Messages().Get("unknown_user")
	profile, err := svc.Profile(ctx, user.ID)
	if err != nil {
		return fallback
	}
	return profile.NameOr(fallback)
}

// ---------------------------------------------------------------------------
// GoalHandler – /goal <amount> [YYYY-MM-DD] <title>
// ---------------------------------------------------------------------------

// GoalHandler creates a goal in the group linked to the chat, linking the
// chat to a new group on first use.
type GoalHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc *service.Service, logger *logrus.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, logger: logger}
}

// Handle processes the /goal command.
func (h *GoalHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()
	if len(args) < 2 {
		return reply(bot, message, catalog.Get("errors.missing_fields"))
	}

	target, err := money.ParseMajor(args[0])
	if err != nil {
		return reply(bot, message, catalog.Get("errors.invalid_amount"))
	}

	var deadline *time.Time
	rest := args[1:]
	if d, err := time.Parse(time.DateOnly, rest[0]); err == nil {
		deadline = &d
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return reply(bot, message, catalog.Get("errors.missing_fields"))
	}

	ctx := context.Background()

	user, group, err := chatGroup(ctx, h.svc, message)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	goal, err := h.svc.CreateGoal(ctx, user.ID, service.GoalInput{
		Title:        strings.Join(rest, " "),
		TargetAmount: target,
		Deadline:     deadline,
		GroupID:      &group.ID,
	})
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
		"goal_id": goal.ID,
	}).Info("Goal created")

	return reply(bot, message, catalog.Format("bot.goal_created",
		goal.ShortID(), Escape(goal.Title), money.Format(goal.TargetAmount, h.svc.Currency())))
}

// ---------------------------------------------------------------------------
// GoalsHandler – /goals
// ---------------------------------------------------------------------------

// GoalsHandler lists the goals of the chat's group with their progress.
type GoalsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewGoalsHandler creates a new GoalsHandler.
func NewGoalsHandler(svc *service.Service, logger *logrus.Logger) *GoalsHandler {
	return &GoalsHandler{svc: svc, logger: logger}
}

// Handle processes the /goals command.
func (h *GoalsHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()
	currency := h.svc.Currency()
	ctx := context.Background()

	user, group, err := linkedGroup(ctx, h.svc, message)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	goals, err := h.svc.GroupGoals(ctx, user.ID, group.ID)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	lines := []string{catalog.Format("bot.goals_header", Escape(group.Name))}
	if len(goals) == 0 {
		lines = append(lines, catalog.Get("bot.goals_empty"))
	}
	for _, g := range goals {
		progress, err := savings.CalculateProgress(g.CurrentAmount, g.TargetAmount)
		if err != nil {
			return fmt.Errorf("goal %s: %w", g.ID, err)
		}
		lines = append(lines, catalog.Format("bot.goal_line",
			g.ShortID(), Escape(g.Title), progressBar(progress.Percentage),
			money.Format(g.CurrentAmount, currency), money.Format(g.TargetAmount, currency),
			progress.Percentage))
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   len(goals),
	}).Info("Listed goals")

	return reply(bot, message, strings.Join(lines, "\n\n"))
}

// ---------------------------------------------------------------------------
// SaveHandler – /save <goal> <amount> [message]
// ---------------------------------------------------------------------------

// SaveHandler records a contribution and announces any milestone it unlocks.
type SaveHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewSaveHandler creates a new SaveHandler.
func NewSaveHandler(svc *service.Service, logger *logrus.Logger) *SaveHandler {
	return &SaveHandler{svc: svc, logger: logger}
}

// Handle processes the /save command.
func (h *SaveHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()
	currency := h.svc.Currency()
	if len(args) < 2 {
		return reply(bot, message, catalog.Get("errors.missing_fields"))
	}

	amount, err := money.ParseMajor(args[1])
	if err != nil {
		return reply(bot, message, catalog.Get("errors.invalid_amount"))
	}

	ctx := context.Background()

	user, group, err := linkedGroup(ctx, h.svc, message)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	goal, err := h.svc.FindGroupGoal(ctx, group.ID, args[0])
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	res, err := h.svc.Contribute(ctx, user.ID, goal.ID, amount, strings.Join(args[2:], " "))
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	name := Escape(displayName(ctx, h.svc, user))
	lines := []string{catalog.Format("bot.contribution_added",
		name, money.Format(amount, currency), Escape(res.Goal.Title),
		money.Format(res.Goal.CurrentAmount, currency), money.Format(res.Goal.TargetAmount, currency),
		res.Progress.Percentage)}
	for _, m := range res.Milestones {
		lines = append(lines, catalog.Format("bot.milestone_unlocked", m.Percentage, Escape(res.Goal.Title), m.RewardPoints, name))
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
		"goal_id": goal.ID,
		"amount":  amount,
	}).Info("Contribution recorded from chat")

	return reply(bot, message, strings.Join(lines, "\n\n"))
}

// ---------------------------------------------------------------------------
// CoachHandler – /coach <goal>
// ---------------------------------------------------------------------------

// CoachHandler replies with the pace projection of a goal.
type CoachHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(svc *service.Service, logger *logrus.Logger) *CoachHandler {
	return &CoachHandler{svc: svc, logger: logger}
}

// Handle processes the /coach command.
func (h *CoachHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	catalog := h.svc.Messages()
	if len(args) == 0 {
		return reply(bot, message, catalog.Get("errors.missing_fields"))
	}

	ctx := context.Background()

	_, group, err := linkedGroup(ctx, h.svc, message)
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	goal, err := h.svc.FindGroupGoal(ctx, group.ID, args[0])
	if err != nil {
		return replyError(bot, message, catalog, err)
	}

	report, err := h.svc.Report(goal)
	if err != nil {
		return err
	}

	return reply(bot, message, h.svc.CoachText(report))
}
