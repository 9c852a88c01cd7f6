package utils

import "math"

const (
	kcalPerProteinPortion = 200.0
	kcalPerCarbPortion    = 120.0
	kcalPerFatPortion     = 120.0
)

// MacroPortions are protein/carb/fat portions derived from an estimate.
type MacroPortions struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// EstimatedKcal is the calorie value the portions stand for.
func (p MacroPortions) EstimatedKcal() float64 {
	return p.Protein*kcalPerProteinPortion + p.Carbs*kcalPerCarbPortion + p.Fats*kcalPerFatPortion
}

// PortionsFromMacros turns a calorie estimate and macro grams into portions.
// A macro holding more than half of the macro calories takes the whole
// estimate. Otherwise the largest share is always counted and any other
// share above 20% is counted too; smaller shares are dropped.
func PortionsFromMacros(calories, proteinG, carbsG, fatG float64) MacroPortions {
	pk := math.Max(proteinG, 0) * 4
	ck := math.Max(carbsG, 0) * 4
	fk := math.Max(fatG, 0) * 9
	total := pk + ck + fk
	if total == 0 || calories <= 0 {
		return MacroPortions{}
	}
	pr, cr, fr := pk/total, ck/total, fk/total

	var out MacroPortions
	switch {
	case pr > 0.5:
		out.Protein = calories / kcalPerProteinPortion
	case cr > 0.5:
		out.Carbs = calories / kcalPerCarbPortion
	case fr > 0.5:
		out.Fats = calories / kcalPerFatPortion
	default:
		top := math.Max(pr, math.Max(cr, fr))
		switch {
		case pr == top:
			out.Protein = calories * pr / kcalPerProteinPortion
		case cr == top:
			out.Carbs = calories * cr / kcalPerCarbPortion
		default:
			out.Fats = calories * fr / kcalPerFatPortion
		}
		if out.Protein == 0 && pr > 0.2 {
			out.Protein = calories * pr / kcalPerProteinPortion
		}
		if out.Carbs == 0 && cr > 0.2 {
			out.Carbs = calories * cr / kcalPerCarbPortion
		}
		if out.Fats == 0 && fr > 0.2 {
			out.Fats = calories * fr / kcalPerFatPortion
		}
	}
	out.Protein = Round1(out.Protein)
	out.Carbs = Round1(out.Carbs)
	out.Fats = Round1(out.Fats)
	return out
}
