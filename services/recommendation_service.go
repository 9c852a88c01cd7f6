package services

import (
	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

const suggestionsPerMacro = 3

type Suggestion struct {
	Macro     string                `json:"macro"`
	Remaining float64               `json:"remaining"`
	Foods     []models.FoodBankItem `json:"foods"`
}

type RecommendationService struct {
	db   *gorm.DB
	logs *DailyLogService
}

func NewRecommendationService(db *gorm.DB, logs *DailyLogService) *RecommendationService {
	return &RecommendationService{db: db, logs: logs}
}

var suggestionSources = []struct {
	macro, category, column string
}{
	{"protein", models.CategoryProtein, "protein_units"},
	{"carb", models.CategoryCarb, "carb_units"},
	{"fat", models.CategoryFat, "fat_units"},
	{"veg", models.CategoryVegetable, "veg_units"},
	{"fruit", models.CategoryFruit, "fruit_units"},
}

// Suggest lists, per macro still short of its goal on date, catalog foods
// whose single serving fits in what remains.
func (s *RecommendationService) Suggest(userID uint, date string) ([]Suggestion, error) {
	date, err := s.logs.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	p, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	var items []models.DailyItem
	if err := s.db.Joins("JOIN daily_logs ON daily_logs.id = daily_items.daily_log_id").
		Where("daily_items.user_id = ? AND daily_logs.date = ?", userID, date).
		Find(&items).Error; err != nil {
		return nil, err
	}
	totals := sumItems(items)

	out := []Suggestion{}
	for _, src := range suggestionSources {
		remaining := utils.Round1(goalFor(p, src.macro) - consumedFor(totals, src.macro))
		if remaining <= 0 {
			continue
		}
		sg := Suggestion{Macro: src.macro, Remaining: remaining, Foods: []models.FoodBankItem{}}
		err := s.db.Where("category = ? AND "+src.column+" > 0 AND "+src.column+" <= ?", src.category, remaining).
			Order(src.column + " DESC, name").
			Limit(suggestionsPerMacro).
			Find(&sg.Foods).Error
		if err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, nil
}
