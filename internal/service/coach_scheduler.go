package service

import (
	"context"
	"strings"
	"time"

	"github.com/Kerhoff/croowa/internal/money"
	"github.com/Kerhoff/croowa/internal/savings"
	"github.com/sirupsen/logrus"
)

// nudgeCooldown is the minimum time between two nudges for the same goal
const nudgeCooldown = 7 * 24 * time.Hour

// NudgeCallback sends a message to a Telegram chat
type NudgeCallback func(chatID int64, text string)

// StartCoachScheduler runs a background loop that checks group goals for a
// pace that will miss their deadline every interval and nudges their chat.
// It blocks until the context is cancelled, so it should be launched in a
// separate goroutine.
func (s *Service) StartCoachScheduler(ctx context.Context, interval time.Duration, callback NudgeCallback) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.WithField("interval", interval).Info("Coach scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Coach scheduler stopped")
			return
		case <-ticker.C:
			s.ProcessNudges(ctx, callback)
		}
	}
}

// ProcessNudges sends one nudge per goal that needs a faster pace and was
// not nudged within the cooldown, then stamps it.
func (s *Service) ProcessNudges(ctx context.Context, callback NudgeCallback) {
	now := s.now()

	candidates, err := s.Goals.ListNudgeCandidates(ctx, now.Add(-nudgeCooldown))
	if err != nil {
		s.logger.Errorf("Failed to get nudge candidates: %v", err)
		return
	}

	for _, c := range candidates {
		projection, err := savings.ProjectPace(c.Goal.CurrentAmount, c.Goal.TargetAmount, c.Goal.Deadline, now)
		if err != nil {
			s.logger.WithError(err).WithField("goal_id", c.Goal.ID).Warn("Skipping goal with invalid amounts")
			continue
		}
		if !projection.NeedsFasterPace {
			continue
		}

		callback(c.ChatID, s.messages.Format("coach.nudge",
			s.escape(c.Goal.Title),
			money.FormatRate(projection.RecommendedWeeklyAmount, s.currency),
			c.Goal.Deadline.Format("2006-01-02"),
			money.FormatRate(projection.CurrentWeeklyPace, s.currency),
		))
		s.metrics.ObserveNudge()

		if err := s.Goals.MarkNudged(ctx, c.Goal.ID, now); err != nil {
			s.logger.WithFields(logrus.Fields{
				"goal_id": c.Goal.ID,
				"error":   err,
			}).Error("Failed to stamp nudged goal")
		}
	}
}

// CoachText renders a goal report as the coach's chat message
func (s *Service) CoachText(report *GoalReport) string {
	goal := report.Goal
	p := report.Projection

	if p.Completed {
		return s.messages.Format("coach.completed", s.escape(goal.Title))
	}

	lines := []string{
		s.messages.Format("coach.header", s.escape(goal.Title)),
		s.messages.Format("coach.pace", money.FormatRate(p.CurrentWeeklyPace, s.currency)),
	}
	if p.Infinite || p.ProjectedCompletion == nil {
		lines = append(lines, s.messages.Format("coach.projected", s.messages.Get("coach.never")))
	} else {
		lines = append(lines, s.messages.Format("coach.projected", p.ProjectedCompletion.Format("2006-01-02")))
	}
	lines = append(lines, s.messages.Format("coach.to_deadline", money.FormatRate(p.RecommendedWeeklyAmount, s.currency)))
	if p.DaysRemaining != nil && p.DailyTarget != nil && *p.DaysRemaining > 0 {
		lines = append(lines, s.messages.Format("coach.daily", *p.DaysRemaining, money.Format(*p.DailyTarget, s.currency)))
	}
	if goal.Deadline != nil {
		if p.NeedsFasterPace {
			lines = append(lines, s.messages.Get("coach.faster"))
		} else if p.OnTrack {
			lines = append(lines, s.messages.Get("coach.on_track"))
		}
	}
	lines = append(lines, "", report.Motivation)

	return strings.Join(lines, "\n")
}
