package utils_test

import (
	"testing"

	"nutriportions/utils"
)

func hasNote(notes []utils.BalanceNote, code string) bool {
	for _, n := range notes {
		if n.Code == code {
			return true
		}
	}
	return false
}

func TestAssessBalanceFlagsFatHeavyItem(t *testing.T) {
	t.Parallel()
	notes := utils.AssessBalance(utils.MacroEstimate{
		Name: "Fried chicken", Grams: 150, Calories: 600, ProteinG: 30, CarbsG: 20, FatG: 40,
	}, 1240)
	for _, code := range []string{"fat_share_high", "energy_dense", "goal_share_high", "fried_heuristic"} {
		if !hasNote(notes, code) {
			t.Fatalf("expected %s note, got %+v", code, notes)
		}
	}
}

func TestAssessBalanceQuietForSmallBalancedItem(t *testing.T) {
	t.Parallel()
	notes := utils.AssessBalance(utils.MacroEstimate{
		Name: "Yogurt", Grams: 150, Calories: 90, ProteinG: 8, CarbsG: 9, FatG: 2,
	}, 1240)
	if len(notes) != 0 {
		t.Fatalf("expected no notes, got %+v", notes)
	}
}
