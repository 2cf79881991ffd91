package gamification

import (
	"testing"
	"time"
)

func TestAddPoints(t *testing.T) {
	tests := []struct {
		total, level, points int
		wantTotal, wantLevel int
	}{
		{0, 1, 10, 10, 1},
		{90, 1, 10, 100, 2},
		{100, 2, 99, 199, 2},
		{199, 2, 1, 200, 3},
		{0, 1, 350, 350, 4},
		{0, 0, 5, 5, 1},
	}
	for _, tt := range tests {
		total, level := AddPoints(tt.total, tt.level, tt.points)
		if total != tt.wantTotal || level != tt.wantLevel {
			t.Errorf("AddPoints(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.total, tt.level, tt.points, total, level, tt.wantTotal, tt.wantLevel)
		}
	}
}

func TestProgress(t *testing.T) {
	p := Progress(250, 3)
	if p.PointsInLevel != 250 || p.PointsForLevel != 300 || p.PointsToNext != 50 {
		t.Errorf("Progress(250, 3) = %+v", p)
	}

	p = Progress(130, 1)
	if p.PointsInLevel != 30 || p.PointsToNext != 70 || p.Percent != 30 {
		t.Errorf("Progress(130, 1) = %+v", p)
	}
}

func TestNextStreak(t *testing.T) {
	today := time.Date(2026, time.May, 10, 18, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, time.May, 10, 7, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, time.May, 9, 23, 59, 0, 0, time.UTC)
	lastWeek := time.Date(2026, time.May, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		streak int
		last   *time.Time
		want   int
	}{
		{"first ever", 0, nil, 1},
		{"same day", 4, &sameDay, 4},
		{"consecutive", 4, &yesterday, 5},
		{"gap", 4, &lastWeek, 1},
	}
	for _, tt := range tests {
		if got := NextStreak(tt.streak, tt.last, today); got != tt.want {
			t.Errorf("%s: NextStreak = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEarned(t *testing.T) {
	got := Earned(Stats{Contributions: 3, StreakDays: 7, Level: 2}, map[string]bool{FirstContribution: true})
	if len(got) != 1 || got[0] != Streak7 {
		t.Errorf("Earned = %v, want [%s]", got, Streak7)
	}

	if got := Earned(Stats{}, nil); len(got) != 0 {
		t.Errorf("Earned(empty) = %v, want none", got)
	}

	got = Earned(Stats{Contributions: 1, CompletedGoals: 1, StreakDays: 9, Level: 5, GroupsCreated: 2}, nil)
	if len(got) != 5 {
		t.Errorf("Earned(all) = %v, want five codes", got)
	}
}
