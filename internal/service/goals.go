package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/money"
	"github.com/Kerhoff/croowa/internal/savings"
	"github.com/google/uuid"
)

const maxTitle = 255

// GoalInput describes a goal to create. Amounts are in minor units.
type GoalInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TargetAmount int64           `json:"target_amount"`
	Category     models.Category `json:"category"`
	Deadline     *time.Time      `json:"deadline"`
	GroupID      *uuid.UUID      `json:"group_id"`
	IsPublic     bool            `json:"is_public"`
}

// GoalReport is a goal with everything derived from its amounts
type GoalReport struct {
	Goal       *models.SavingsGoal `json:"goal"`
	Progress   savings.Progress    `json:"progress"`
	Projection savings.Projection  `json:"projection"`
	Milestones []savings.Milestone `json:"milestones"`
	Motivation string              `json:"motivation"`
	// Unlocked holds the recorded first crossings, with who crossed them
	Unlocked []*models.MilestoneRecord `json:"unlocked_milestones,omitempty"`
}

// CreateGoal validates and stores a new goal owned by userID. Group goals
// require membership of the group.
func (s *Service) CreateGoal(ctx context.Context, userID uuid.UUID, in GoalInput) (*models.SavingsGoal, error) {
	title := strings.TrimSpace(in.Title)
	category := in.Category
	if category == "" {
		category = models.CategoryOther
	}
	category = models.Category(strings.ToLower(string(category)))

	v := &validator{}
	v.check(title != "", "title is required")
	v.check(utf8.RuneCountInString(title) <= maxTitle, "title must be at most %d characters", maxTitle)
	v.check(in.TargetAmount > 0, "target amount must be greater than 0")
	v.check(in.TargetAmount <= money.MaxAmount, "target amount must be at most %d", money.MaxAmount)
	v.check(category.Valid(), "category %q is not supported", in.Category)
	if err := v.err(); err != nil {
		return nil, err
	}

	if in.GroupID != nil {
		if _, err := s.requireMember(ctx, *in.GroupID, userID); err != nil {
			return nil, err
		}
	}

	var deadline *time.Time
	if in.Deadline != nil {
		y, m, d := in.Deadline.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		deadline = &day
	}

	goal, err := s.Goals.Create(ctx, &models.SavingsGoal{
		UserID:       userID,
		GroupID:      in.GroupID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		TargetAmount: in.TargetAmount,
		Category:     category,
		Deadline:     deadline,
		IsPublic:     in.IsPublic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.logger.Infof("Created goal %q (%s) for user %s", goal.Title, goal.ID, userID)
	return goal, nil
}

// Goal returns a goal the viewer may see: their own, one of their groups',
// or a public one.
func (s *Service) Goal(ctx context.Context, viewer, goalID uuid.UUID) (*models.SavingsGoal, error) {
	goal, err := s.Goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %s: %w", goalID, err)
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if goal.UserID == viewer || goal.IsPublic {
		return goal, nil
	}
	if goal.GroupID != nil {
		if _, err := s.requireMember(ctx, *goal.GroupID, viewer); err == nil {
			return goal, nil
		}
	}
	return nil, ErrForbidden
}

// MyGoals lists the goals a user created
func (s *Service) MyGoals(ctx context.Context, userID uuid.UUID) ([]*models.SavingsGoal, error) {
	goals, err := s.Goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// GroupGoals lists a group's goals for one of its members
func (s *Service) GroupGoals(ctx context.Context, viewer, groupID uuid.UUID) ([]*models.SavingsGoal, error) {
	if _, err := s.requireMember(ctx, groupID, viewer); err != nil {
		return nil, err
	}
	goals, err := s.Goals.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group goals: %w", err)
	}
	return goals, nil
}

// FindGroupGoal resolves a goal of the group by id prefix, as typed in chat
func (s *Service) FindGroupGoal(ctx context.Context, groupID uuid.UUID, prefix string) (*models.SavingsGoal, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, ErrGoalNotFound
	}
	goal, err := s.Goals.FindByPrefix(ctx, groupID, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to find goal %q: %w", prefix, err)
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

// GoalReport loads a visible goal and computes its progress, pace and
// milestones at the service clock's current time.
func (s *Service) GoalReport(ctx context.Context, viewer, goalID uuid.UUID) (*GoalReport, error) {
	goal, err := s.Goal(ctx, viewer, goalID)
	if err != nil {
		return nil, err
	}
	report, err := s.Report(goal)
	if err != nil {
		return nil, err
	}
	report.Unlocked, err = s.Milestones.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	return report, nil
}

// Report computes the derived figures of an already loaded goal
func (s *Service) Report(goal *models.SavingsGoal) (*GoalReport, error) {
	progress, err := savings.CalculateProgress(goal.CurrentAmount, goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goal.ID, err)
	}
	projection, err := savings.ProjectPace(goal.CurrentAmount, goal.TargetAmount, goal.Deadline, s.now())
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goal.ID, err)
	}
	milestones, err := savings.EvaluateMilestones(goal.CurrentAmount, goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goal.ID, err)
	}

	return &GoalReport{
		Goal:       goal,
		Progress:   progress,
		Projection: projection,
		Milestones: milestones,
		Motivation: s.messages.Get(string(projection.Tier)),
	}, nil
}

// Contributors ranks everyone who contributed to a visible goal
func (s *Service) Contributors(ctx context.Context, viewer, goalID uuid.UUID) ([]savings.RankedEntry, error) {
	if _, err := s.Goal(ctx, viewer, goalID); err != nil {
		return nil, err
	}
	totals, err := s.Contributions.TotalsByUserForGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributors: %w", err)
	}
	return s.rankUsers(ctx, totals, 0)
}

// rankUsers ranks per-user totals with profile names
func (s *Service) rankUsers(ctx context.Context, totals []models.ContributionTotal, limit int) ([]savings.RankedEntry, error) {
	records := make([]savings.Amount, len(totals))
	ids := make([]uuid.UUID, len(totals))
	for i, t := range totals {
		records[i] = savings.Amount{Key: t.Key, Amount: t.Amount}
		ids[i] = t.Key
	}

	names, err := s.displayNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	return savings.Rank(records, savings.RankOptions{
		Names:    names,
		Fallback: s.messages.Get("unknown_user"),
		Limit:    limit,
	}), nil
}
