package service

import (
	"context"
	"fmt"

	"github.com/Kerhoff/croowa/internal/gamification"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

// GamificationStatus is a user's points, level and streak
type GamificationStatus struct {
	State    *models.GamificationState  `json:"state"`
	Progress gamification.LevelProgress `json:"level_progress"`
}

func (s *Service) gamificationState(ctx context.Context, userID uuid.UUID) (*models.GamificationState, error) {
	state, err := s.Gamification.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gamification state: %w", err)
	}
	if state == nil {
		state = models.NewGamificationState(userID)
	}
	return state, nil
}

// GamificationStatus returns the user's current state and level progress
func (s *Service) GamificationStatus(ctx context.Context, userID uuid.UUID) (*GamificationStatus, error) {
	state, err := s.gamificationState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GamificationStatus{
		State:    state,
		Progress: gamification.Progress(state.TotalPoints, state.CurrentLevel),
	}, nil
}

// UserAchievements lists the catalog with the user's unlock times
func (s *Service) UserAchievements(ctx context.Context, userID uuid.UUID) ([]*models.Achievement, error) {
	achievements, err := s.Achievements.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

// unlockAchievements records every newly earned achievement within tx. It
// returns the unlocked codes and the points they are worth.
func (s *Service) unlockAchievements(ctx context.Context, tx repository.RewardTx, userID uuid.UUID, streak, level int) ([]string, int, error) {
	stats, err := tx.Stats(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get user stats: %w", err)
	}

	catalog, err := tx.Achievements().ListForUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list achievements: %w", err)
	}
	unlocked := make(map[string]bool, len(catalog))
	points := make(map[string]int, len(catalog))
	for _, a := range catalog {
		unlocked[a.Code] = a.UnlockedAt != nil
		points[a.Code] = a.Points
	}

	earned := gamification.Earned(gamification.Stats{
		Contributions:  stats.Contributions,
		CompletedGoals: stats.CompletedGoals,
		StreakDays:     streak,
		Level:          level,
		GroupsCreated:  stats.GroupsCreated,
	}, unlocked)

	var codes []string
	added := 0
	for _, code := range earned {
		ok, err := tx.Achievements().Unlock(ctx, userID, code, s.now())
		if err != nil {
			return nil, 0, fmt.Errorf("failed to unlock %s: %w", code, err)
		}
		if !ok {
			continue
		}
		codes = append(codes, code)
		added += points[code]
	}

	if len(codes) > 0 {
		s.logger.Infof("User %s unlocked achievements %v", userID, codes)
	}
	return codes, added, nil
}

// awardAchievements evaluates achievements outside a contribution, such as
// after founding a group.
func (s *Service) awardAchievements(ctx context.Context, userID uuid.UUID) error {
	return s.Gamification.Reward(ctx, userID, func(tx repository.RewardTx) error {
		current, err := tx.State(ctx)
		if err != nil {
			return err
		}
		codes, points, err := s.unlockAchievements(ctx, tx, userID, current.StreakDays, current.CurrentLevel)
		if err != nil || len(codes) == 0 {
			return err
		}
		_, err = tx.Credit(ctx, points, current.StreakDays, current.LastContributionOn)
		return err
	})
}
