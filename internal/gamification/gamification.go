// Package gamification implements points, levels, streaks and achievement
// rules. Like package savings it is pure: callers load and persist state.
package gamification

import "time"

// PointsPerLevel scales the threshold for leaving a level: level L is left
// once total points reach L*PointsPerLevel. A total T therefore sits at
// level max(L, T/PointsPerLevel+1).
const PointsPerLevel = 100

// AddPoints adds points to a total and advances the level while the total
// meets the current level's threshold.
func AddPoints(total, level, points int) (newTotal, newLevel int) {
	if level < 1 {
		level = 1
	}
	total += points
	for total >= level*PointsPerLevel {
		level++
	}
	return total, level
}

// LevelProgress describes progress within the current level.
type LevelProgress struct {
	PointsInLevel  int     `json:"points_in_level"`
	PointsForLevel int     `json:"points_for_level"`
	PointsToNext   int     `json:"points_to_next"`
	Percent        float64 `json:"percent"`
}

// Progress computes progress within level as total % (level*100).
func Progress(total, level int) LevelProgress {
	if level < 1 {
		level = 1
	}
	needed := level * PointsPerLevel
	in := total % needed
	return LevelProgress{
		PointsInLevel:  in,
		PointsForLevel: needed,
		PointsToNext:   needed - in,
		Percent:        float64(in) / float64(needed) * 100,
	}
}

// NextStreak returns the streak after a contribution made on today, given
// the current streak and the date of the previous contribution. A second
// contribution on the same day leaves the streak unchanged; the next
// calendar day extends it; any longer gap restarts it at 1.
func NextStreak(streak int, last *time.Time, today time.Time) int {
	if last == nil || streak < 1 {
		return 1
	}
	switch daysBetween(*last, today) {
	case 0:
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

func daysBetween(from, to time.Time) int {
	loc := to.Location()
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
