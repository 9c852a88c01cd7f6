package services

import (
	"fmt"

	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

type MealPlanInput struct {
	FoodID       uint    `json:"food_id" binding:"required"`
	MealCategory string  `json:"meal_category" binding:"required"`
	Measure      string  `json:"measure"`
	Quantity     float64 `json:"quantity" binding:"required"`
}

type MealPlan struct {
	Items  []models.MealPlanItem     `json:"items"`
	Totals utils.Portions            `json:"totals"`
	ByMeal map[string]utils.Portions `json:"by_meal"`
}

type MealPlanService struct {
	db    *gorm.DB
	foods *FoodBankService
}

func NewMealPlanService(db *gorm.DB, foods *FoodBankService) *MealPlanService {
	return &MealPlanService{db: db, foods: foods}
}

func (s *MealPlanService) Add(userID uint, in MealPlanInput) (*models.MealPlanItem, error) {
	if !models.IsMealCategory(in.MealCategory) {
		return nil, fmt.Errorf("%w: unknown meal category %q", ErrInvalidInput, in.MealCategory)
	}
	if _, err := loadProfile(s.db, userID); err != nil {
		return nil, err
	}
	food, err := s.foods.Get(in.FoodID)
	if err != nil {
		return nil, err
	}
	if in.Measure == "" {
		in.Measure = string(utils.MeasureServing)
	}
	m, err := utils.ParseMeasurement(in.Measure)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p, _, err := utils.ScaleFood(food, m, in.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item := models.MealPlanItem{
		UserID:       userID,
		FoodID:       food.ID,
		Name:         food.Name,
		MealCategory: in.MealCategory,
		MeasureType:  string(m),
		Quantity:     in.Quantity,
		Kcal:         p.Kcal,
		ProteinUnits: p.Protein,
		CarbUnits:    p.Carb,
		FatUnits:     p.Fat,
		VegUnits:     p.Veg,
		FruitUnits:   p.Fruit,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MealPlanService) List(userID uint) (*MealPlan, error) {
	plan := &MealPlan{Items: []models.MealPlanItem{}, ByMeal: make(map[string]utils.Portions)}
	if err := s.db.Where("user_id = ?", userID).Order("meal_category, id").Find(&plan.Items).Error; err != nil {
		return nil, err
	}
	for _, it := range plan.Items {
		p := utils.Portions{
			Kcal: it.Kcal, Protein: it.ProteinUnits, Carb: it.CarbUnits,
			Fat: it.FatUnits, Veg: it.VegUnits, Fruit: it.FruitUnits,
		}
		plan.Totals = plan.Totals.Add(p)
		plan.ByMeal[it.MealCategory] = plan.ByMeal[it.MealCategory].Add(p)
	}
	return plan, nil
}

func (s *MealPlanService) Delete(id uint) error {
	res := s.db.Delete(&models.MealPlanItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("meal plan item %d: %w", id, ErrNotFound)
	}
	return nil
}
