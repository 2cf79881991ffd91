package savings

// Milestone is one fixed percentage-of-target threshold of a goal.
type Milestone struct {
	Percentage   int  `json:"percentage"`
	Unlocked     bool `json:"unlocked"`
	RewardPoints int  `json:"reward_points"`
	// AmountRequired is the current amount at which the milestone unlocks.
	AmountRequired int64 `json:"amount_required"`
}

// milestoneRewards lists thresholds in ascending order with their rewards.
var milestoneRewards = []struct {
	percentage int
	points     int
}{
	{25, 10},
	{50, 25},
	{75, 50},
	{100, 100},
}

// MilestoneThresholds returns the fixed thresholds in ascending order.
func MilestoneThresholds() []int {
	out := make([]int, len(milestoneRewards))
	for i, m := range milestoneRewards {
		out[i] = m.percentage
	}
	return out
}

// EvaluateMilestones reports which thresholds the goal has reached. A
// progress exactly on a threshold counts as reached.
func EvaluateMilestones(current, target int64) ([]Milestone, error) {
	if target <= 0 || current < 0 {
		return nil, ErrInvalidGoal
	}

	out := make([]Milestone, len(milestoneRewards))
	for i, m := range milestoneRewards {
		// current/target*100 >= p  <=>  current*100 >= p*target, without
		// float rounding at the boundary.
		out[i] = Milestone{
			Percentage:     m.percentage,
			Unlocked:       current*100 >= int64(m.percentage)*target,
			RewardPoints:   m.points,
			AmountRequired: (int64(m.percentage)*target + 99) / 100,
		}
	}
	return out, nil
}

// NewlyUnlocked returns the unlocked milestones whose percentage is not in
// recorded. Each threshold unlocks at most once; callers persist the result
// and pass it back as recorded on later evaluations.
func NewlyUnlocked(evaluated []Milestone, recorded map[int]bool) []Milestone {
	var out []Milestone
	for _, m := range evaluated {
		if m.Unlocked && !recorded[m.Percentage] {
			out = append(out, m)
		}
	}
	return out
}
