package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/croowa/internal/gamification"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/money"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/Kerhoff/croowa/internal/savings"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxContributionMessage = 500
	contributionPageSize   = 50
)

// ContributionResult is a recorded contribution and its consequences
type ContributionResult struct {
	Contribution *models.Contribution      `json:"contribution"`
	Goal         *models.SavingsGoal       `json:"goal"`
	Progress     savings.Progress          `json:"progress"`
	Milestones   []savings.Milestone       `json:"milestones_unlocked"`
	Achievements []string                  `json:"achievements_unlocked"`
	Points       int                       `json:"points_awarded"`
	State        *models.GamificationState `json:"gamification,omitempty"`
}

// Contribute records amount (minor units) against a goal the user owns or
// shares a group with. Newly crossed milestones are recorded once and their
// points go to the contributor who crossed them.
func (s *Service) Contribute(ctx context.Context, userID, goalID uuid.UUID, amount int64, message string) (*ContributionResult, error) {
	message = strings.TrimSpace(message)

	v := &validator{}
	v.check(amount > 0, "amount must be greater than 0")
	v.check(amount <= money.MaxAmount, "amount must be at most %d", money.MaxAmount)
	v.check(utf8.RuneCountInString(message) <= maxContributionMessage, "message must be at most %d characters", maxContributionMessage)
	if err := v.err(); err != nil {
		return nil, err
	}

	goal, err := s.Goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %s: %w", goalID, err)
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if goal.UserID != userID {
		if goal.GroupID == nil {
			return nil, ErrForbidden
		}
		if _, err := s.requireMember(ctx, *goal.GroupID, userID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	contribution := &models.Contribution{
		GoalID:    goalID,
		UserID:    userID,
		Amount:    amount,
		Message:   message,
		CreatedAt: now,
	}
	updated, err := s.Contributions.Record(ctx, contribution)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}
	s.metrics.ObserveContribution(amount)

	log := s.logger.WithFields(logrus.Fields{
		"goal_id": goalID,
		"user_id": userID,
		"amount":  amount,
	})
	log.Info("Contribution recorded")

	progress, err := savings.CalculateProgress(updated.CurrentAmount, updated.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goalID, err)
	}

	result := &ContributionResult{
		Contribution: contribution,
		Goal:         updated,
		Progress:     progress,
	}

	// The contribution is committed at this point. A failed reward
	// transaction is logged and leaves the result without rewards; the
	// milestones it would have recorded are awarded by a later contribution.
	if err := s.reward(ctx, result); err != nil {
		log.WithError(err).Error("Failed to apply contribution rewards")
	}

	return result, nil
}

// reward applies milestone points, the streak and achievements in one
// reward transaction, so either all of them are stored or none are.
func (s *Service) reward(ctx context.Context, result *ContributionResult) error {
	goal := result.Goal
	userID := result.Contribution.UserID
	now := result.Contribution.CreatedAt

	evaluated, err := savings.EvaluateMilestones(goal.CurrentAmount, goal.TargetAmount)
	if err != nil {
		return err
	}

	var (
		milestones []savings.Milestone
		codes      []string
		points     int
		state      *models.GamificationState
	)
	err = s.Gamification.Reward(ctx, userID, func(tx repository.RewardTx) error {
		milestones, codes, points = nil, nil, 0

		current, err := tx.State(ctx)
		if err != nil {
			return err
		}

		records, err := tx.Milestones().ListByGoal(ctx, goal.ID)
		if err != nil {
			return fmt.Errorf("failed to load milestones: %w", err)
		}
		recorded := make(map[int]bool, len(records))
		for _, rec := range records {
			recorded[rec.Percentage] = true
		}

		for _, m := range savings.NewlyUnlocked(evaluated, recorded) {
			inserted, err := tx.Milestones().Record(ctx, &models.MilestoneRecord{
				GoalID:       goal.ID,
				Percentage:   m.Percentage,
				UnlockedAt:   now,
				UnlockedByID: userID,
			})
			if err != nil {
				return fmt.Errorf("failed to record milestone %d%%: %w", m.Percentage, err)
			}
			if inserted {
				milestones = append(milestones, m)
				points += m.RewardPoints
			}
		}

		streak := gamification.NextStreak(current.StreakDays, current.LastContributionOn, now)
		_, level := gamification.AddPoints(current.TotalPoints, current.CurrentLevel, points)

		unlocked, bonus, err := s.unlockAchievements(ctx, tx, userID, streak, level)
		if err != nil {
			return err
		}
		codes = unlocked
		points += bonus

		state, err = tx.Credit(ctx, points, streak, &now)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to apply rewards: %w", err)
	}

	for _, m := range milestones {
		s.metrics.ObserveMilestone(m.Percentage)
	}
	result.Milestones = milestones
	result.Achievements = codes
	result.Points = points
	result.State = state
	return nil
}

// ContributionsForGoal lists a visible goal's most recent contributions
func (s *Service) ContributionsForGoal(ctx context.Context, viewer, goalID uuid.UUID) ([]*models.Contribution, error) {
	if _, err := s.Goal(ctx, viewer, goalID); err != nil {
		return nil, err
	}
	contributions, err := s.Contributions.ListByGoal(ctx, goalID, contributionPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return contributions, nil
}
