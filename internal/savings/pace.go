package savings

import (
	"math"
	"time"
)

const (
	// DefaultHorizonWeeks is the planning horizon used for goals without a
	// deadline.
	DefaultHorizonWeeks = 52

	// contributionWindowWeeks bounds how many weeks the current amount is
	// assumed to have been saved over. Per-period history is not tracked,
	// so this is an approximation.
	contributionWindowWeeks = 4

	// maxProjectedWeeks keeps now + WeeksToCompletion within time.Duration.
	maxProjectedWeeks = math.MaxInt64 / int64(week)

	week = 7 * 24 * time.Hour
	day  = 24 * time.Hour
)

// Projection is the outcome of projecting a goal's savings pace.
type Projection struct {
	WeeksUntilDeadline int     `json:"weeks_until_deadline"`
	CurrentWeeklyPace  float64 `json:"current_weekly_pace"`
	Remaining          int64   `json:"remaining"`
	Completed          bool    `json:"completed"`

	// WeeksToCompletion is only meaningful when Infinite is false.
	WeeksToCompletion int  `json:"weeks_to_completion"`
	Infinite          bool `json:"infinite"`
	// ProjectedCompletion is nil when the goal can never be reached at the
	// current pace.
	ProjectedCompletion *time.Time `json:"projected_completion,omitempty"`

	RecommendedWeeklyAmount float64 `json:"recommended_weekly_amount"`
	NeedsFasterPace         bool    `json:"needs_faster_pace"`
	OnTrack                 bool    `json:"on_track"`

	// DaysRemaining and DailyTarget are only set for goals with a deadline.
	DaysRemaining *int   `json:"days_remaining,omitempty"`
	DailyTarget   *int64 `json:"daily_target,omitempty"`

	Tier MotivationTier `json:"tier"`
}

// ProjectPace estimates whether a goal will be met by its deadline and what
// weekly contribution would close the gap. now is supplied by the caller.
func ProjectPace(current, target int64, deadline *time.Time, now time.Time) (Projection, error) {
	if target <= 0 || current < 0 {
		return Projection{}, ErrInvalidGoal
	}

	weeksUntilDeadline := DefaultHorizonWeeks
	if deadline != nil {
		weeksUntilDeadline = max(1, ceilDiv(deadline.Sub(now), week))
	}

	window := min(contributionWindowWeeks, weeksUntilDeadline)
	remaining := target - current

	p := Projection{
		WeeksUntilDeadline:      weeksUntilDeadline,
		CurrentWeeklyPace:       max(float64(current)/float64(window), 0),
		Remaining:               remaining,
		RecommendedWeeklyAmount: max(float64(remaining)/float64(weeksUntilDeadline), 0),
		Tier:                    TierFor(percentOf(current, target)),
	}

	switch {
	case remaining <= 0:
		p.Completed = true
		p.WeeksToCompletion = 0
	case current <= 0:
		p.Infinite = true
	default:
		weeks := math.Ceil(float64(remaining) / (float64(current) / float64(window)))
		if weeks > float64(maxProjectedWeeks) {
			p.Infinite = true
		} else {
			p.WeeksToCompletion = int(weeks)
		}
	}

	if !p.Infinite {
		at := now.Add(time.Duration(p.WeeksToCompletion) * week)
		p.ProjectedCompletion = &at
	}

	p.NeedsFasterPace = remaining > 0 && (p.Infinite || p.WeeksToCompletion > weeksUntilDeadline)
	p.OnTrack = remaining > 0 && !p.NeedsFasterPace

	if deadline != nil {
		days := ceilDiv(deadline.Sub(now), day)
		var daily int64
		if days > 0 && remaining > 0 {
			daily = (remaining + int64(days) - 1) / int64(days)
		}
		p.DaysRemaining = &days
		p.DailyTarget = &daily
	}

	return p, nil
}

func ceilDiv(d, unit time.Duration) int {
	return int(math.Ceil(float64(d) / float64(unit)))
}
