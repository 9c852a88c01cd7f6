package models

import (
	"time"

	"gorm.io/datatypes"
)

type Guide struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// MealPlanItem is a coach-prescribed entry in a client's plan. Values are
// computed from the food bank at write time, like DailyItem.
type MealPlanItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	FoodID       uint      `json:"food_id"`
	Name         string    `json:"name"`
	MealCategory string    `gorm:"size:16" json:"meal_category"`
	MeasureType  string    `gorm:"size:16" json:"measure_type"`
	Quantity     float64   `json:"quantity"`
	Kcal         float64   `json:"kcal"`
	ProteinUnits float64   `json:"protein_units"`
	CarbUnits    float64   `json:"carb_units"`
	FatUnits     float64   `json:"fat_units"`
	VegUnits     float64   `json:"veg_units"`
	FruitUnits   float64   `json:"fruit_units"`
	CreatedAt    time.Time `json:"created_at"`
}

// PhotoAnalysis keeps the raw analyzer output for a meal photo.
type PhotoAnalysis struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	ImageURL  string         `json:"image_url,omitempty"`
	Analyzer  string         `gorm:"size:16" json:"analyzer"`
	ItemCount int            `json:"item_count"`
	Raw       datatypes.JSON `json:"raw"`
	CreatedAt time.Time      `json:"created_at"`
}
