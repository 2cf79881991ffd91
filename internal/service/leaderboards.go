package service

import (
	"context"
	"fmt"

	"github.com/Kerhoff/croowa/internal/savings"
	"github.com/google/uuid"
)

// PointsEntry is a row of the points leaderboard
type PointsEntry struct {
	savings.RankedEntry
	Level int `json:"level"`
}

// GroupEntry is a row of the groups leaderboard
type GroupEntry struct {
	savings.RankedEntry
	MemberCount int `json:"member_count"`
}

// SavingsLeaderboard ranks users by everything they have contributed
func (s *Service) SavingsLeaderboard(ctx context.Context) ([]savings.RankedEntry, error) {
	totals, err := s.Contributions.TotalsByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contribution totals: %w", err)
	}
	return s.rankUsers(ctx, totals, savings.DefaultBoardSize)
}

// GroupRanking ranks the members of a group by their contributions to the
// group's goals.
func (s *Service) GroupRanking(ctx context.Context, viewer, groupID uuid.UUID) ([]savings.RankedEntry, error) {
	if _, err := s.Group(ctx, viewer, groupID); err != nil {
		return nil, err
	}
	totals, err := s.Contributions.TotalsByUserForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group totals: %w", err)
	}
	return s.rankUsers(ctx, totals, 0)
}

// PointsLeaderboard ranks users by total gamification points
func (s *Service) PointsLeaderboard(ctx context.Context) ([]PointsEntry, error) {
	states, err := s.Gamification.Top(ctx, savings.DefaultBoardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load points leaderboard: %w", err)
	}

	records := make([]savings.Amount, len(states))
	names := make(map[uuid.UUID]string, len(states))
	levels := make(map[uuid.UUID]int, len(states))
	for i, st := range states {
		records[i] = savings.Amount{Key: st.UserID, Amount: int64(st.TotalPoints)}
		names[st.UserID] = st.DisplayName
		levels[st.UserID] = st.CurrentLevel
	}

	ranked := savings.Rank(records, savings.RankOptions{
		Names:    names,
		Fallback: s.messages.Get("unknown_user"),
		Limit:    savings.DefaultBoardSize,
	})
	out := make([]PointsEntry, len(ranked))
	for i, e := range ranked {
		out[i] = PointsEntry{RankedEntry: e, Level: levels[e.Key]}
	}
	return out, nil
}

// GroupsLeaderboard ranks public groups by total saved
func (s *Service) GroupsLeaderboard(ctx context.Context) ([]GroupEntry, error) {
	groups, err := s.Groups.ListPublic(ctx, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list public groups: %w", err)
	}

	records := make([]savings.Amount, len(groups))
	names := make(map[uuid.UUID]string, len(groups))
	members := make(map[uuid.UUID]int, len(groups))
	for i, g := range groups {
		records[i] = savings.Amount{Key: g.ID, Amount: g.TotalSaved}
		names[g.ID] = g.Name
		members[g.ID] = g.MemberCount
	}

	ranked := savings.Rank(records, savings.RankOptions{
		Names:    names,
		Fallback: s.messages.Get("unknown_group"),
		Limit:    savings.DefaultBoardSize,
	})
	out := make([]GroupEntry, len(ranked))
	for i, e := range ranked {
		out[i] = GroupEntry{RankedEntry: e, MemberCount: members[e.Key]}
	}
	return out, nil
}
