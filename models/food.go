package models

import "time"

// Food bank categories, in display order.
const (
	CategoryProtein     = "protein"
	CategoryCarb        = "carb"
	CategoryFat         = "fat"
	CategoryVegetable   = "vegetable"
	CategoryFruit       = "fruit"
	CategorySpreads     = "spreads"
	CategoryGrocery     = "grocery"
	CategoryRestaurants = "restaurants"
)

var CategoryOrder = []string{
	CategoryProtein, CategoryCarb, CategoryFat, CategoryVegetable,
	CategoryFruit, CategorySpreads, CategoryGrocery, CategoryRestaurants,
}

// FoodBankItem is a catalog entry. Per-unit values describe one serving;
// the conversion factors say how many of a measurement make up that serving.
// A factor of zero means the measurement is not offered for this food.
type FoodBankItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"index;not null" json:"name"`
	Category    string `gorm:"size:32;index" json:"category"`
	SubCategory string `gorm:"size:64" json:"sub_category"`
	ImgURL      string `json:"img_url"`
	UnitLabel   string `json:"unit_label"`

	CaloriesPerUnit float64 `json:"calories_per_unit"`
	ProteinUnits    float64 `json:"protein_units"`
	CarbUnits       float64 `json:"carb_units"`
	FatUnits        float64 `json:"fat_units"`
	VegUnits        float64 `json:"veg_units"`
	FruitUnits      float64 `json:"fruit_units"`

	GramsPerSingleItem float64 `gorm:"default:0" json:"grams_per_single_item"`
	ItemsPerUnit       float64 `gorm:"default:0" json:"items_per_unit"`
	GramsPerCup        float64 `gorm:"default:0" json:"grams_per_cup"`
	GramsPerTbsp       float64 `gorm:"default:0" json:"grams_per_tbsp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FoodBankItem) TableName() string { return "food_bank" }
