package utils

import (
	"errors"
	"fmt"
	"math"

	"nutriportions/models"
)

// Measurement is how a quantity was entered.
type Measurement string

const (
	MeasureServing Measurement = "serving"
	MeasureGrams   Measurement = "grams"
	MeasureUnit    Measurement = "unit"
	MeasureCup     Measurement = "cup"
	MeasureTbsp    Measurement = "tbsp"
)

var (
	ErrMeasurementUnavailable = errors.New("measurement not available for this food")
	ErrNonPositiveQuantity    = errors.New("quantity must be greater than zero")
)

// Portions are the calorie and unit values of some amount of food.
type Portions struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein_units"`
	Carb    float64 `json:"carb_units"`
	Fat     float64 `json:"fat_units"`
	Veg     float64 `json:"veg_units"`
	Fruit   float64 `json:"fruit_units"`
}

func (p Portions) Add(o Portions) Portions {
	return Portions{
		Kcal:    p.Kcal + o.Kcal,
		Protein: p.Protein + o.Protein,
		Carb:    p.Carb + o.Carb,
		Fat:     p.Fat + o.Fat,
		Veg:     p.Veg + o.Veg,
		Fruit:   p.Fruit + o.Fruit,
	}
}

func (p Portions) Scale(f float64) Portions {
	return Portions{
		Kcal:    p.Kcal * f,
		Protein: p.Protein * f,
		Carb:    p.Carb * f,
		Fat:     p.Fat * f,
		Veg:     p.Veg * f,
		Fruit:   p.Fruit * f,
	}
}

// PerServing returns the catalog values of one serving of food.
func PerServing(food *models.FoodBankItem) Portions {
	return Portions{
		Kcal:    food.CaloriesPerUnit,
		Protein: food.ProteinUnits,
		Carb:    food.CarbUnits,
		Fat:     food.FatUnits,
		Veg:     food.VegUnits,
		Fruit:   food.FruitUnits,
	}
}

func ParseMeasurement(s string) (Measurement, error) {
	switch m := Measurement(s); m {
	case MeasureServing, MeasureGrams, MeasureUnit, MeasureCup, MeasureTbsp:
		return m, nil
	}
	return "", fmt.Errorf("unknown measurement %q", s)
}

// ConversionFactor is how many of m make one serving. Zero means unavailable.
func ConversionFactor(food *models.FoodBankItem, m Measurement) float64 {
	var f float64
	switch m {
	case MeasureServing:
		f = 1
	case MeasureGrams:
		f = food.GramsPerSingleItem
	case MeasureUnit:
		f = food.ItemsPerUnit
	case MeasureCup:
		f = food.GramsPerCup
	case MeasureTbsp:
		f = food.GramsPerTbsp
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// AvailableMeasurements lists the measurements a food can be entered in.
func AvailableMeasurements(food *models.FoodBankItem) []Measurement {
	out := []Measurement{MeasureServing}
	for _, m := range []Measurement{MeasureGrams, MeasureUnit, MeasureCup, MeasureTbsp} {
		if ConversionFactor(food, m) > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Servings converts a quantity in measurement m into servings.
func Servings(food *models.FoodBankItem, m Measurement, quantity float64) (float64, error) {
	if quantity <= 0 || math.IsNaN(quantity) {
		return 0, ErrNonPositiveQuantity
	}
	f := ConversionFactor(food, m)
	if f == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMeasurementUnavailable, m)
	}
	return quantity / f, nil
}

// ScaleFood returns the portions of quantity measured in m, plus the grams
// when the quantity was entered in grams.
func ScaleFood(food *models.FoodBankItem, m Measurement, quantity float64) (Portions, float64, error) {
	s, err := Servings(food, m, quantity)
	if err != nil {
		return Portions{}, 0, err
	}
	grams := 0.0
	if m == MeasureGrams {
		grams = quantity
	}
	return PerServing(food).Scale(s), grams, nil
}

// RoundToHalf rounds to the nearest 0.5.
func RoundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var kcalPerCategoryUnit = map[string]float64{
	models.CategoryProtein:   200,
	models.CategoryCarb:      120,
	models.CategoryFat:       120,
	models.CategoryVegetable: 25,
	models.CategoryFruit:     60,
}

// UnitsFromKcal estimates how many units of category a calorie amount is
// worth, rounded to the nearest half unit. Unknown categories use 120 kcal.
func UnitsFromKcal(kcal float64, category string) float64 {
	per, ok := kcalPerCategoryUnit[category]
	if !ok {
		per = 120
	}
	return RoundToHalf(kcal / per)
}
