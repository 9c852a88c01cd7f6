package models

import "time"

// Meal categories a daily item can be filed under.
const (
	MealBreakfast = "breakfast"
	MealSnack     = "snack"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

var MealCategories = []string{MealBreakfast, MealSnack, MealLunch, MealDinner}

// Item sources.
const (
	SourceFoodBank = "food_bank"
	SourceAI       = "ai"
	SourceMealPlan = "meal_plan"
)

// DailyLog is one user's calendar day. The Total* columns mirror the sum of
// the day's items and are rewritten after every item write.
type DailyLog struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"uniqueIndex:idx_daily_log_user_date;not null" json:"user_id"`
	Date   string `gorm:"size:10;uniqueIndex:idx_daily_log_user_date;not null" json:"date"` // YYYY-MM-DD

	TotalKcal         float64 `json:"total_kcal"`
	TotalProteinUnits float64 `json:"total_protein_units"`
	TotalCarbUnits    float64 `json:"total_carb_units"`
	TotalFatUnits     float64 `json:"total_fat_units"`
	TotalVegUnits     float64 `json:"total_veg_units"`
	TotalFruitUnits   float64 `json:"total_fruit_units"`
	WaterGlasses      float64 `json:"water_glasses"`

	Items     []DailyItem `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DailyItem is a snapshot of what was eaten. Its values are computed once,
// when it is written, and never re-read from the food bank.
type DailyItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	DailyLogID   uint    `gorm:"index;not null" json:"daily_log_id"`
	UserID       uint    `gorm:"index;not null" json:"user_id"`
	FoodID       *uint   `json:"food_id"`
	Name         string  `json:"name"`
	MealCategory string  `gorm:"size:16;not null" json:"meal_category"`
	MeasureType  string  `gorm:"size:16" json:"measure_type"`
	Quantity     float64 `json:"quantity"`
	Grams        float64 `json:"grams"`
	Kcal         float64 `json:"kcal"`
	ProteinUnits float64 `json:"protein_units"`
	CarbUnits    float64 `json:"carb_units"`
	FatUnits     float64 `json:"fat_units"`
	VegUnits     float64 `json:"veg_units"`
	FruitUnits   float64 `json:"fruit_units"`
	Source       string  `gorm:"size:16" json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsMealCategory(s string) bool {
	for _, m := range MealCategories {
		if m == s {
			return true
		}
	}
	return false
}
