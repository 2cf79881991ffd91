package savings

// MotivationTier selects the encouragement shown for a goal. The value is
// also the key of the message in the string table.
type MotivationTier string

const (
	TierFinalStretch  MotivationTier = "motivation.final_stretch"
	TierThreeQuarters MotivationTier = "motivation.three_quarters"
	TierHalfway       MotivationTier = "motivation.halfway"
	TierGreatStart    MotivationTier = "motivation.great_start"
	TierFirstStep     MotivationTier = "motivation.first_step"
	TierNotStarted    MotivationTier = "motivation.not_started"
)

// motivationTiers is evaluated top-down; the first matching row wins.
var motivationTiers = []struct {
	atLeast float64
	tier    MotivationTier
}{
	{90, TierFinalStretch},
	{75, TierThreeQuarters},
	{50, TierHalfway},
	{25, TierGreatStart},
}

// TierFor maps a progress percentage to its motivation tier.
func TierFor(percentage float64) MotivationTier {
	for _, row := range motivationTiers {
		if percentage >= row.atLeast {
			return row.tier
		}
	}
	if percentage > 0 {
		return TierFirstStep
	}
	return TierNotStarted
}
