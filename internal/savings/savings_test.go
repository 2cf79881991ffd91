package savings

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name      string
		current   int64
		target    int64
		wantPct   float64
		wantRaw   float64
		remaining int64
		completed bool
	}{
		{"empty", 0, 1000, 0, 0, 1000, false},
		{"half", 500, 1000, 50, 50, 500, false},
		{"exact", 1000, 1000, 100, 100, 0, true},
		{"overfunded", 1500, 1000, 100, 150, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateProgress(tt.current, tt.target)
			if err != nil {
				t.Fatalf("CalculateProgress: %v", err)
			}
			if got.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPct)
			}
			if got.RawPercentage != tt.wantRaw {
				t.Errorf("RawPercentage = %v, want %v", got.RawPercentage, tt.wantRaw)
			}
			if got.Remaining != tt.remaining {
				t.Errorf("Remaining = %d, want %d", got.Remaining, tt.remaining)
			}
			if got.Completed != tt.completed {
				t.Errorf("Completed = %v, want %v", got.Completed, tt.completed)
			}
		})
	}
}

func TestCalculateProgressRejectsInvalidAmounts(t *testing.T) {
	for _, c := range [][2]int64{{0, 0}, {100, 0}, {100, -5}, {-1, 100}} {
		if _, err := CalculateProgress(c[0], c[1]); !errors.Is(err, ErrInvalidGoal) {
			t.Errorf("CalculateProgress(%d, %d) error = %v, want ErrInvalidGoal", c[0], c[1], err)
		}
	}
}

func TestProgressClampedAndHundredOnlyWhenReached(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := [][2]int64{{999_999_999_999_999, 1_000_000_000_000_000}, {1, 1}, {0, 1}}
	for i := 0; i < 2000; i++ {
		target := rng.Int63n(1_000_000) + 1
		cases = append(cases, [2]int64{rng.Int63n(2 * target), target})
	}

	for _, c := range cases {
		p, err := CalculateProgress(c[0], c[1])
		if err != nil {
			t.Fatalf("CalculateProgress(%d, %d): %v", c[0], c[1], err)
		}
		if p.Percentage < 0 || p.Percentage > 100 {
			t.Fatalf("Percentage %v out of range for %v", p.Percentage, c)
		}
		if (p.Percentage == 100) != (c[0] >= c[1]) {
			t.Fatalf("Percentage == 100 is %v for current=%d target=%d", p.Percentage == 100, c[0], c[1])
		}
	}
}

func TestProjectPaceWithoutDeadline(t *testing.T) {
	p, err := ProjectPace(0, 1000, nil, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}

	if p.WeeksUntilDeadline != 52 {
		t.Errorf("WeeksUntilDeadline = %d, want 52", p.WeeksUntilDeadline)
	}
	if p.CurrentWeeklyPace != 0 {
		t.Errorf("CurrentWeeklyPace = %v, want 0", p.CurrentWeeklyPace)
	}
	if !p.Infinite {
		t.Error("expected infinite weeks to completion")
	}
	if p.ProjectedCompletion != nil {
		t.Errorf("ProjectedCompletion = %v, want nil", p.ProjectedCompletion)
	}
	if math.Abs(p.RecommendedWeeklyAmount-1000.0/52) > 1e-9 {
		t.Errorf("RecommendedWeeklyAmount = %v, want %v", p.RecommendedWeeklyAmount, 1000.0/52)
	}
	if !p.NeedsFasterPace || p.OnTrack {
		t.Errorf("NeedsFasterPace = %v, OnTrack = %v", p.NeedsFasterPace, p.OnTrack)
	}
	if p.DaysRemaining != nil || p.DailyTarget != nil {
		t.Error("days remaining should be unset without a deadline")
	}
	if p.Tier != TierNotStarted {
		t.Errorf("Tier = %q, want %q", p.Tier, TierNotStarted)
	}
}

func TestProjectPaceWithDeadline(t *testing.T) {
	deadline := testNow.Add(14 * 24 * time.Hour)

	p, err := ProjectPace(500, 1000, &deadline, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}

	if p.WeeksUntilDeadline != 2 {
		t.Errorf("WeeksUntilDeadline = %d, want 2", p.WeeksUntilDeadline)
	}
	if p.Remaining != 500 {
		t.Errorf("Remaining = %d, want 500", p.Remaining)
	}
	if p.RecommendedWeeklyAmount != 250 {
		t.Errorf("RecommendedWeeklyAmount = %v, want 250", p.RecommendedWeeklyAmount)
	}
	if p.CurrentWeeklyPace != 250 {
		t.Errorf("CurrentWeeklyPace = %v, want 250", p.CurrentWeeklyPace)
	}
	if p.WeeksToCompletion != 2 || p.Infinite {
		t.Errorf("WeeksToCompletion = %d (infinite %v), want 2", p.WeeksToCompletion, p.Infinite)
	}
	if !p.OnTrack || p.NeedsFasterPace {
		t.Errorf("OnTrack = %v, NeedsFasterPace = %v", p.OnTrack, p.NeedsFasterPace)
	}
	wantDate := testNow.Add(14 * 24 * time.Hour)
	if p.ProjectedCompletion == nil || !p.ProjectedCompletion.Equal(wantDate) {
		t.Errorf("ProjectedCompletion = %v, want %v", p.ProjectedCompletion, wantDate)
	}
	if p.DaysRemaining == nil || *p.DaysRemaining != 14 {
		t.Errorf("DaysRemaining = %v, want 14", p.DaysRemaining)
	}
	if p.DailyTarget == nil || *p.DailyTarget != 36 {
		t.Errorf("DailyTarget = %v, want 36", p.DailyTarget)
	}
	if p.Tier != TierHalfway {
		t.Errorf("Tier = %q, want %q", p.Tier, TierHalfway)
	}
}

func TestProjectPaceSlowSaver(t *testing.T) {
	deadline := testNow.Add(10 * 7 * 24 * time.Hour)

	// 100 saved over a 4 week window is 25/week; 900 remaining takes 36 weeks.
	p, err := ProjectPace(100, 1000, &deadline, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}
	if p.WeeksToCompletion != 36 {
		t.Errorf("WeeksToCompletion = %d, want 36", p.WeeksToCompletion)
	}
	if !p.NeedsFasterPace || p.OnTrack {
		t.Errorf("NeedsFasterPace = %v, OnTrack = %v", p.NeedsFasterPace, p.OnTrack)
	}
	if p.RecommendedWeeklyAmount != 90 {
		t.Errorf("RecommendedWeeklyAmount = %v, want 90", p.RecommendedWeeklyAmount)
	}
}

func TestProjectPacePastDeadline(t *testing.T) {
	deadline := testNow.Add(-3 * 24 * time.Hour)

	p, err := ProjectPace(200, 1000, &deadline, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}
	if p.WeeksUntilDeadline != 1 {
		t.Errorf("WeeksUntilDeadline = %d, want 1", p.WeeksUntilDeadline)
	}
	if p.RecommendedWeeklyAmount != 800 {
		t.Errorf("RecommendedWeeklyAmount = %v, want 800", p.RecommendedWeeklyAmount)
	}
	if p.DailyTarget == nil || *p.DailyTarget != 0 {
		t.Errorf("DailyTarget = %v, want 0", p.DailyTarget)
	}
}

func TestProjectPaceCompleted(t *testing.T) {
	p, err := ProjectPace(1200, 1000, nil, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}
	if !p.Completed || p.WeeksToCompletion != 0 || p.Infinite {
		t.Errorf("Completed = %v, WeeksToCompletion = %d, Infinite = %v", p.Completed, p.WeeksToCompletion, p.Infinite)
	}
	if p.RecommendedWeeklyAmount != 0 {
		t.Errorf("RecommendedWeeklyAmount = %v, want 0", p.RecommendedWeeklyAmount)
	}
	if p.NeedsFasterPace || p.OnTrack {
		t.Errorf("NeedsFasterPace = %v, OnTrack = %v", p.NeedsFasterPace, p.OnTrack)
	}
	if p.ProjectedCompletion == nil || !p.ProjectedCompletion.Equal(testNow) {
		t.Errorf("ProjectedCompletion = %v, want now", p.ProjectedCompletion)
	}
}

func TestProjectPaceIsTotal(t *testing.T) {
	past := testNow.Add(-400 * 24 * time.Hour)
	present := testNow
	future := testNow.Add(3 * 24 * time.Hour)
	far := testNow.Add(3 * 365 * 24 * time.Hour)
	deadlines := []*time.Time{nil, &past, &present, &future, &far}

	for _, d := range deadlines {
		for _, current := range []int64{0, 1, 499, 1000, 5000} {
			for _, target := range []int64{1, 1000, 1_000_000} {
				p, err := ProjectPace(current, target, d, testNow)
				if err != nil {
					t.Fatalf("ProjectPace(%d, %d, %v): %v", current, target, d, err)
				}
				if p.WeeksUntilDeadline < 1 {
					t.Errorf("WeeksUntilDeadline = %d for deadline %v", p.WeeksUntilDeadline, d)
				}
				if !p.Infinite && p.WeeksToCompletion < 0 {
					t.Errorf("negative WeeksToCompletion %d", p.WeeksToCompletion)
				}
				if p.Infinite != (p.ProjectedCompletion == nil) {
					t.Errorf("Infinite = %v but ProjectedCompletion = %v", p.Infinite, p.ProjectedCompletion)
				}
				if p.RecommendedWeeklyAmount < 0 {
					t.Errorf("negative recommendation %v", p.RecommendedWeeklyAmount)
				}
			}
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want MotivationTier
	}{
		{0, TierNotStarted},
		{0.01, TierFirstStep},
		{24.99, TierFirstStep},
		{25, TierGreatStart},
		{50, TierHalfway},
		{75, TierThreeQuarters},
		{89.9, TierThreeQuarters},
		{90, TierFinalStretch},
		{140, TierFinalStretch},
	}
	for _, tt := range tests {
		if got := TierFor(tt.pct); got != tt.want {
			t.Errorf("TierFor(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

var (
	userA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	userB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	userC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func TestRankExample(t *testing.T) {
	records := []Amount{{userA, 300155}, {userB, 500000}, {userA, 200000}}

	got := Rank(records, RankOptions{
		Names:    map[uuid.UUID]string{userA: "Alva", userB: "Bo"},
		Fallback: "Unknown user",
	})

	want := []RankedEntry{
		{Rank: 1, Key: userA, DisplayName: "Alva", Total: 500155},
		{Rank: 2, Key: userB, DisplayName: "Bo", Total: 500000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRankTiesAndFallbackName(t *testing.T) {
	records := []Amount{{userC, 100}, {userB, 100}, {userA, 50}}

	got := Rank(records, RankOptions{Fallback: "Unknown user"})

	if got[0].Key != userB || got[1].Key != userC {
		t.Errorf("tie order = %v, %v; want B before C", got[0].Key, got[1].Key)
	}
	if got[0].Rank != 1 || got[1].Rank != 2 || got[2].Rank != 3 {
		t.Errorf("ranks = %d,%d,%d; want distinct positions", got[0].Rank, got[1].Rank, got[2].Rank)
	}
	for _, e := range got {
		if e.DisplayName != "Unknown user" {
			t.Errorf("DisplayName = %q, want fallback", e.DisplayName)
		}
	}
}

func TestRankIsOrderIndependent(t *testing.T) {
	records := []Amount{
		{userA, 10}, {userB, 30}, {userC, 20}, {userA, 20}, {userB, 0}, {userC, 10},
	}
	want := Rank(records, RankOptions{})

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]Amount(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Rank(shuffled, RankOptions{})
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("shuffle %d: entry %d = %+v, want %+v", i, j, got[j], want[j])
			}
		}
	}
}

func TestRankLimitAssignsRanksAfterTruncation(t *testing.T) {
	var records []Amount
	for i := 0; i < 15; i++ {
		records = append(records, Amount{Key: uuid.New(), Amount: int64(i * 100)})
	}

	got := Rank(records, RankOptions{Limit: DefaultBoardSize})

	if len(got) != DefaultBoardSize {
		t.Fatalf("len = %d, want %d", len(got), DefaultBoardSize)
	}
	if got[0].Rank != 1 || got[0].Total != 1400 {
		t.Errorf("first = %+v, want rank 1 with total 1400", got[0])
	}
	if got[9].Rank != 10 || got[9].Total != 500 {
		t.Errorf("last = %+v, want rank 10 with total 500", got[9])
	}
}

func TestEvaluateMilestonesBoundary(t *testing.T) {
	ms, err := EvaluateMilestones(500, 1000)
	if err != nil {
		t.Fatalf("EvaluateMilestones: %v", err)
	}

	want := map[int]bool{25: true, 50: true, 75: false, 100: false}
	for _, m := range ms {
		if m.Unlocked != want[m.Percentage] {
			t.Errorf("milestone %d unlocked = %v, want %v", m.Percentage, m.Unlocked, want[m.Percentage])
		}
	}
	if ms[0].RewardPoints != 10 || ms[1].RewardPoints != 25 || ms[2].RewardPoints != 50 || ms[3].RewardPoints != 100 {
		t.Errorf("unexpected rewards: %+v", ms)
	}
	if ms[2].AmountRequired != 750 {
		t.Errorf("AmountRequired(75) = %d, want 750", ms[2].AmountRequired)
	}
}

func TestEvaluateMilestonesBoundaryWithOddTarget(t *testing.T) {
	// 3 of 4 is exactly 75%.
	ms, err := EvaluateMilestones(3, 4)
	if err != nil {
		t.Fatalf("EvaluateMilestones: %v", err)
	}
	if !ms[2].Unlocked {
		t.Error("75% milestone should unlock at exactly 75%")
	}
	if ms[3].Unlocked {
		t.Error("100% milestone should stay locked")
	}
}

func TestMilestonesMonotonic(t *testing.T) {
	const target = 997
	unlocked := map[int]bool{}

	for current := int64(0); current <= 2*target; current += 13 {
		ms, err := EvaluateMilestones(current, target)
		if err != nil {
			t.Fatalf("EvaluateMilestones: %v", err)
		}
		for _, m := range ms {
			if unlocked[m.Percentage] && !m.Unlocked {
				t.Fatalf("milestone %d relocked at current=%d", m.Percentage, current)
			}
			if m.Unlocked {
				unlocked[m.Percentage] = true
			}
		}
	}
	if len(unlocked) != 4 {
		t.Errorf("unlocked %v, want all four", unlocked)
	}
}

func TestNewlyUnlocked(t *testing.T) {
	ms, _ := EvaluateMilestones(800, 1000)

	got := NewlyUnlocked(ms, map[int]bool{25: true})
	if len(got) != 2 || got[0].Percentage != 50 || got[1].Percentage != 75 {
		t.Errorf("NewlyUnlocked = %+v, want 50 and 75", got)
	}

	if again := NewlyUnlocked(ms, map[int]bool{25: true, 50: true, 75: true}); len(again) != 0 {
		t.Errorf("NewlyUnlocked after recording = %+v, want none", again)
	}
}

func TestMilestoneThresholds(t *testing.T) {
	got := MilestoneThresholds()
	want := []int{25, 50, 75, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MilestoneThresholds = %v, want %v", got, want)
		}
	}
}

func TestProjectPaceHugeTarget(t *testing.T) {
	p, err := ProjectPace(1, math.MaxInt64, nil, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}
	if !p.Infinite || p.ProjectedCompletion != nil {
		t.Errorf("Infinite = %v, ProjectedCompletion = %v, want unreachable", p.Infinite, p.ProjectedCompletion)
	}
	if p.Remaining != math.MaxInt64-1 {
		t.Errorf("Remaining = %d", p.Remaining)
	}

	p, err = ProjectPace(math.MaxInt64/2, math.MaxInt64, nil, testNow)
	if err != nil {
		t.Fatalf("ProjectPace: %v", err)
	}
	if p.Infinite || p.WeeksToCompletion != 4 {
		t.Errorf("WeeksToCompletion = %d, Infinite = %v, want 4", p.WeeksToCompletion, p.Infinite)
	}
}
