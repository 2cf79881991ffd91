package gamification

// Stats are the per-user counters achievement rules are evaluated against.
type Stats struct {
	Contributions  int
	CompletedGoals int
	StreakDays     int
	Level          int
	GroupsCreated  int
}

// Achievement codes. They match the seeded rows of the achievements table.
const (
	FirstContribution = "first_contribution"
	GoalCompleted     = "goal_completed"
	Streak7           = "streak_7"
	Level5            = "level_5"
	GroupFounder      = "group_founder"
)

var rules = []struct {
	code string
	met  func(Stats) bool
}{
	{FirstContribution, func(s Stats) bool { return s.Contributions >= 1 }},
	{GoalCompleted, func(s Stats) bool { return s.CompletedGoals >= 1 }},
	{Streak7, func(s Stats) bool { return s.StreakDays >= 7 }},
	{Level5, func(s Stats) bool { return s.Level >= 5 }},
	{GroupFounder, func(s Stats) bool { return s.GroupsCreated >= 1 }},
}

// Earned returns the codes of achievements whose rule is met and that are
// not in unlocked, in catalog order.
func Earned(s Stats, unlocked map[string]bool) []string {
	var out []string
	for _, r := range rules {
		if !unlocked[r.code] && r.met(s) {
			out = append(out, r.code)
		}
	}
	return out
}
