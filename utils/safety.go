package utils

import (
	"fmt"
	"strings"
)

// NoteSeverity categorizes how much a balance note matters.
type NoteSeverity string

const (
	Info    NoteSeverity = "info"
	Caution NoteSeverity = "caution"
	High    NoteSeverity = "high"
)

// BalanceNote is a structured finding about an estimated meal item.
type BalanceNote struct {
	Code     string       `json:"code"`
	Severity NoteSeverity `json:"severity"`
	Message  string       `json:"message"`
	Metric   string       `json:"metric,omitempty"`
	Value    float64      `json:"value,omitempty"`
}

// MacroEstimate is what an analyzer reports for one item.
type MacroEstimate struct {
	Name     string
	Grams    float64
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// AssessBalance flags items whose macro split falls outside the usual
// distribution ranges, energy-dense items, and items that use up a large
// share of the daily calorie goal. kcalGoal of 0 skips the goal check.
func AssessBalance(e MacroEstimate, kcalGoal float64) []BalanceNote {
	var notes []BalanceNote

	pk, ck, fk := e.ProteinG*4, e.CarbsG*4, e.FatG*9
	total := pk + ck + fk
	// small items say little about the day's split
	if total >= 150 {
		pPct, cPct, fPct := pk/total, ck/total, fk/total
		if fPct > 0.35 {
			notes = append(notes, BalanceNote{
				Code:     "fat_share_high",
				Severity: Caution,
				Message:  fmt.Sprintf("Fat is ~%.0f%% of this item's calories (usual range 20-35%%).", fPct*100),
				Metric:   "fat_pct",
				Value:    round2(fPct * 100),
			})
		}
		if cPct > 0.65 {
			notes = append(notes, BalanceNote{
				Code:     "carb_share_high",
				Severity: Info,
				Message:  fmt.Sprintf("Carbohydrates are ~%.0f%% of this item's calories (usual range 45-65%%).", cPct*100),
				Metric:   "carb_pct",
				Value:    round2(cPct * 100),
			})
		}
		if pPct < 0.10 {
			notes = append(notes, BalanceNote{
				Code:     "protein_share_low",
				Severity: Info,
				Message:  "Little protein here. Pair it with a protein portion.",
				Metric:   "protein_pct",
				Value:    round2(pPct * 100),
			})
		}
	}

	if e.Grams > 0 && e.Calories > 0 {
		density := e.Calories / e.Grams
		if density >= 4 {
			notes = append(notes, BalanceNote{
				Code:     "energy_dense",
				Severity: Caution,
				Message:  "Energy dense item. A small amount carries many calories.",
				Metric:   "kcal_per_gram",
				Value:    round2(density),
			})
		}
	}

	if kcalGoal > 0 && e.Calories > 0 {
		share := e.Calories / kcalGoal
		switch {
		case share >= 0.5:
			notes = append(notes, BalanceNote{
				Code:     "goal_share_very_high",
				Severity: High,
				Message:  fmt.Sprintf("This item alone is ~%.0f%% of the daily calorie goal.", share*100),
				Metric:   "goal_pct",
				Value:    round2(share * 100),
			})
		case share >= 0.3:
			notes = append(notes, BalanceNote{
				Code:     "goal_share_high",
				Severity: Caution,
				Message:  fmt.Sprintf("This item is ~%.0f%% of the daily calorie goal.", share*100),
				Metric:   "goal_pct",
				Value:    round2(share * 100),
			})
		}
	}

	if looksFried(strings.ToLower(e.Name)) {
		notes = append(notes, BalanceNote{
			Code:     "fried_heuristic",
			Severity: Info,
			Message:  "Looks fried. Estimates for fried food often run low on fat.",
		})
	}
	return notes
}

func looksFried(name string) bool {
	for _, k := range []string{"fried", "fries", "schnitzel", "tempura", "nuggets", "crispy"} {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}
