package services

import (
	"errors"
	"fmt"
	"strings"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Broadcaster delivers realtime events to a user's open sockets.
type Broadcaster interface {
	Broadcast(userID uint, event string, payload any)
}

type AddFoodRequest struct {
	Date         string  `json:"date"`
	MealCategory string  `json:"meal_category" binding:"required"`
	FoodID       uint    `json:"food_id" binding:"required"`
	Measure      string  `json:"measure"`
	Quantity     float64 `json:"quantity" binding:"required"`
}

// AnalyzedItemInput is an AI estimate the user confirmed.
type AnalyzedItemInput struct {
	Name     string              `json:"name"`
	Grams    float64             `json:"grams"`
	Calories float64             `json:"calories"`
	Portions utils.MacroPortions `json:"portions"`
	FoodID   *uint               `json:"food_id"`
}

type DailyItemService struct {
	db   *gorm.DB
	logs *DailyLogService
	hub  Broadcaster
}

func NewDailyItemService(db *gorm.DB, logs *DailyLogService, hub Broadcaster) *DailyItemService {
	return &DailyItemService{db: db, logs: logs, hub: hub}
}

func (s *DailyItemService) checkMeal(meal string) error {
	if !models.IsMealCategory(meal) {
		return fmt.Errorf("%w: unknown meal category %q", ErrInvalidInput, meal)
	}
	return nil
}

// insert writes items into the user's log for date and refreshes totals.
func (s *DailyItemService) insert(userID uint, date string, items []models.DailyItem) ([]models.DailyItem, error) {
	var totals utils.Portions
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dl, err := ensureDailyLog(tx, userID, date)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].DailyLogID = dl.ID
			items[i].UserID = userID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert daily items: %w", err)
		}
		totals, err = recomputeTotals(tx, dl.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		utils.ItemsLogged.WithLabelValues(it.Source).Inc()
	}
	s.notify(userID, date, totals)
	return items, nil
}

func (s *DailyItemService) notify(userID uint, date string, totals utils.Portions) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(userID, EventDailyLogUpdated, DayTotals{Date: date, Totals: totals})
}

// AddFromFoodBank logs quantity of a catalog food. Values are computed now
// and stored on the item.
func (s *DailyItemService) AddFromFoodBank(userID uint, req AddFoodRequest) (*models.DailyItem, error) {
	if err := s.checkMeal(req.MealCategory); err != nil {
		return nil, err
	}
	date, err := s.logs.ResolveDate(req.Date)
	if err != nil {
		return nil, err
	}
	var food models.FoodBankItem
	if err := s.db.First(&food, req.FoodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("food %d: %w", req.FoodID, ErrNotFound)
		}
		return nil, err
	}
	if req.Measure == "" {
		req.Measure = string(utils.MeasureServing)
	}
	m, err := utils.ParseMeasurement(req.Measure)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p, grams, err := utils.ScaleFood(&food, m, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item := models.DailyItem{
		FoodID:       &food.ID,
		Name:         food.Name,
		MealCategory: req.MealCategory,
		MeasureType:  string(m),
		Quantity:     req.Quantity,
		Grams:        grams,
		Kcal:         p.Kcal,
		ProteinUnits: p.Protein,
		CarbUnits:    p.Carb,
		FatUnits:     p.Fat,
		VegUnits:     p.Veg,
		FruitUnits:   p.Fruit,
		Source:       models.SourceFoodBank,
	}
	out, err := s.insert(userID, date, []models.DailyItem{item})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AddAnalyzedItems logs confirmed photo-analysis estimates, one unit each.
func (s *DailyItemService) AddAnalyzedItems(userID uint, date, meal string, in []AnalyzedItemInput) ([]models.DailyItem, error) {
	if err := s.checkMeal(meal); err != nil {
		return nil, err
	}
	date, err := s.logs.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidInput)
	}
	items := make([]models.DailyItem, 0, len(in))
	for _, a := range in {
		name := strings.TrimSpace(a.Name)
		if name == "" || a.Calories < 0 || a.Grams < 0 {
			return nil, fmt.Errorf("%w: item needs a name and non-negative calories and grams", ErrInvalidInput)
		}
		if a.Portions.Protein < 0 || a.Portions.Carbs < 0 || a.Portions.Fats < 0 {
			return nil, fmt.Errorf("%w: %s has negative portions", ErrInvalidInput, name)
		}
		if a.FoodID != nil {
			var n int64
			if err := s.db.Model(&models.FoodBankItem{}).Where("id = ?", *a.FoodID).Count(&n).Error; err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, fmt.Errorf("%w: food %d does not exist", ErrInvalidInput, *a.FoodID)
			}
		}
		items = append(items, models.DailyItem{
			FoodID:       a.FoodID,
			Name:         name,
			MealCategory: meal,
			MeasureType:  string(utils.MeasureUnit),
			Quantity:     1,
			Grams:        a.Grams,
			Kcal:         a.Calories,
			ProteinUnits: a.Portions.Protein,
			CarbUnits:    a.Portions.Carbs,
			FatUnits:     a.Portions.Fats,
			Source:       models.SourceAI,
		})
	}
	return s.insert(userID, date, items)
}

// AddFromMealPlan copies a planned item into the user's day.
func (s *DailyItemService) AddFromMealPlan(userID uint, date string, planItemID uint) (*models.DailyItem, error) {
	date, err := s.logs.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	var pi models.MealPlanItem
	if err := s.db.Where("id = ? AND user_id = ?", planItemID, userID).First(&pi).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("meal plan item %d: %w", planItemID, ErrNotFound)
		}
		return nil, err
	}
	foodID := pi.FoodID
	item := models.DailyItem{
		FoodID:       &foodID,
		Name:         pi.Name,
		MealCategory: pi.MealCategory,
		MeasureType:  pi.MeasureType,
		Quantity:     pi.Quantity,
		Kcal:         pi.Kcal,
		ProteinUnits: pi.ProteinUnits,
		CarbUnits:    pi.CarbUnits,
		FatUnits:     pi.FatUnits,
		VegUnits:     pi.VegUnits,
		FruitUnits:   pi.FruitUnits,
		Source:       models.SourceMealPlan,
	}
	if pi.MeasureType == string(utils.MeasureGrams) {
		item.Grams = pi.Quantity
	}
	out, err := s.insert(userID, date, []models.DailyItem{item})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *DailyItemService) ownedItem(tx *gorm.DB, userID, itemID uint) (*models.DailyItem, error) {
	var it models.DailyItem
	if err := tx.First(&it, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}
	if it.UserID != userID {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrForbidden)
	}
	return &it, nil
}

func (s *DailyItemService) logDate(tx *gorm.DB, logID uint) string {
	var dl models.DailyLog
	if err := tx.Select("date").First(&dl, logID).Error; err != nil {
		return ""
	}
	return dl.Date
}

// UpdateQuantity rescales every stored value by newQty/oldQty. The food
// bank is not consulted.
func (s *DailyItemService) UpdateQuantity(userID, itemID uint, quantity float64) (*models.DailyItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	}
	var (
		it     *models.DailyItem
		totals utils.Portions
		date   string
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		it, err = s.ownedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item has no quantity to scale from", ErrInvalidInput)
		}
		ratio := quantity / it.Quantity
		it.Quantity = quantity
		it.Grams *= ratio
		it.Kcal *= ratio
		it.ProteinUnits *= ratio
		it.CarbUnits *= ratio
		it.FatUnits *= ratio
		it.VegUnits *= ratio
		it.FruitUnits *= ratio
		if err := tx.Save(it).Error; err != nil {
			return err
		}
		totals, err = recomputeTotals(tx, it.DailyLogID)
		date = s.logDate(tx, it.DailyLogID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, date, totals)
	return it, nil
}

func (s *DailyItemService) Delete(userID, itemID uint) error {
	var (
		totals utils.Portions
		date   string
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		it, err := s.ownedItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.DailyItem{}, it.ID).Error; err != nil {
			return err
		}
		totals, err = recomputeTotals(tx, it.DailyLogID)
		date = s.logDate(tx, it.DailyLogID)
		return err
	})
	if err != nil {
		return err
	}
	log.Debug().Str(utils.PACKAGE, "services").Str(utils.EVENT, "item_deleted").Uint(utils.ID, itemID).Send()
	s.notify(userID, date, totals)
	return nil
}
