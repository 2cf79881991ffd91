// Package savings holds the pure calculations run over goal and contribution
// data: progress, pace projection, rankings and milestones. Nothing in here
// touches the database or reads the wall clock.
package savings

import (
	"errors"
	"math"
)

// ErrInvalidGoal is returned when a goal's amounts cannot be used for a
// calculation (non-positive target or negative current amount).
var ErrInvalidGoal = errors.New("invalid goal amounts")

// Progress describes how far a goal has come.
type Progress struct {
	// Percentage is clamped to [0, 100] for display.
	Percentage float64 `json:"percentage"`
	// RawPercentage is the unclamped ratio and may exceed 100 for
	// over-funded goals.
	RawPercentage float64 `json:"raw_percentage"`
	Remaining     int64   `json:"remaining"`
	Completed     bool    `json:"completed"`
}

// CalculateProgress computes the progress of a goal from its current and
// target amounts in minor currency units.
func CalculateProgress(current, target int64) (Progress, error) {
	if target <= 0 || current < 0 {
		return Progress{}, ErrInvalidGoal
	}

	raw := percentOf(current, target)
	completed := current >= target

	pct := min(max(raw, 0), 100)
	if !completed && pct >= 100 {
		// float rounding on very large amounts must not report 100%
		// for a goal that is still short.
		pct = math.Nextafter(100, 0)
	}

	return Progress{
		Percentage:    pct,
		RawPercentage: raw,
		Remaining:     max(target-current, 0),
		Completed:     completed,
	}, nil
}

func percentOf(current, target int64) float64 {
	return float64(current) / float64(target) * 100
}
