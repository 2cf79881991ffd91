package messages

import (
	"testing"

	"github.com/Kerhoff/croowa/internal/savings"
)

func TestDefaultHasMotivationTiers(t *testing.T) {
	c := Default()

	tiers := []savings.MotivationTier{
		savings.TierFinalStretch,
		savings.TierThreeQuarters,
		savings.TierHalfway,
		savings.TierGreatStart,
		savings.TierFirstStep,
		savings.TierNotStarted,
	}
	for _, tier := range tiers {
		if !c.Has(string(tier)) {
			t.Errorf("missing message for tier %q", tier)
		}
	}
}

func TestDefaultKeys(t *testing.T) {
	c := Default()
	for _, key := range []string{"unknown_user", "errors.generic", "bot.help", "coach.nudge"} {
		if !c.Has(key) {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestParseAndFormat(t *testing.T) {
	c, err := Parse([]byte("greeting:\n  hello: \"Hej %s!\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c.Format("greeting.hello", "Alva"); got != "Hej Alva!" {
		t.Errorf("Format = %q", got)
	}
	if got := c.Get("missing.key"); got != "missing.key" {
		t.Errorf("Get(missing) = %q", got)
	}
}

func TestParseRejectsNonStrings(t *testing.T) {
	if _, err := Parse([]byte("count: 3\n")); err == nil {
		t.Error("expected error for numeric value")
	}
}
