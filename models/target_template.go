package models

import "gorm.io/gorm"

// TargetTemplate is a reusable set of goals an admin can apply to a client.
type TargetTemplate struct {
	gorm.Model
	Name                   string  `gorm:"uniqueIndex;not null" json:"name"`
	KcalGoal               float64 `json:"kcal_goal"`
	ProteinUnits           float64 `json:"protein_units"`
	CarbUnits              float64 `json:"carb_units"`
	FatUnits               float64 `json:"fat_units"`
	VegUnits               float64 `json:"veg_units"`
	FruitUnits             float64 `json:"fruit_units"`
	WeeklyCardioMinutes    float64 `json:"weekly_cardio_minutes"`
	WeeklyStrengthWorkouts float64 `json:"weekly_strength_workouts"`
}
