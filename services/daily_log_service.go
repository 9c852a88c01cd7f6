package services

import (
	"errors"
	"fmt"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

// GoalProgress compares a consumed amount with a goal.
type GoalProgress struct {
	Consumed  float64 `json:"consumed"`
	Goal      float64 `json:"goal"`
	Percent   float64 `json:"percent"`
	Remaining float64 `json:"remaining"`
}

func progress(consumed, goal float64) GoalProgress {
	gp := GoalProgress{Consumed: consumed, Goal: goal}
	if goal > 0 {
		gp.Percent = consumed / goal
		if gp.Percent > 1 {
			gp.Percent = 1
		}
		if consumed < goal {
			gp.Remaining = goal - consumed
		}
	}
	return gp
}

// MealSummary groups one meal category's items.
type MealSummary struct {
	Items  []models.DailyItem `json:"items"`
	Totals utils.Portions     `json:"totals"`
}

// DayView is everything the daily screen shows.
type DayView struct {
	Log      models.DailyLog         `json:"log"`
	Items    []models.DailyItem      `json:"items"`
	Totals   utils.Portions          `json:"totals"`
	Meals    map[string]MealSummary  `json:"meals"`
	Progress map[string]GoalProgress `json:"progress"`
	Water    GoalProgress            `json:"water"`
}

// DayTotals is the derived total of one calendar day.
type DayTotals struct {
	Date   string         `json:"date"`
	Totals utils.Portions `json:"totals"`
}

type DailyLogService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewDailyLogService(db *gorm.DB, loc *time.Location) *DailyLogService {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyLogService{db: db, loc: loc, now: time.Now}
}

// Today is the current date in the service timezone.
func (s *DailyLogService) Today() string {
	return utils.DayKey(s.now(), s.loc)
}

// ResolveDate defaults an empty date to today and validates the rest.
func (s *DailyLogService) ResolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	if _, err := utils.ParseDay(date); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return date, nil
}

// EnsureDailyLog returns the user's log for date, creating it if needed.
func (s *DailyLogService) EnsureDailyLog(userID uint, date string) (*models.DailyLog, error) {
	return ensureDailyLog(s.db, userID, date)
}

func ensureDailyLog(tx *gorm.DB, userID uint, date string) (*models.DailyLog, error) {
	var dl models.DailyLog
	err := tx.Where(models.DailyLog{UserID: userID, Date: date}).FirstOrCreate(&dl).Error
	if err != nil {
		return nil, fmt.Errorf("ensure daily log: %w", err)
	}
	return &dl, nil
}

func sumItems(items []models.DailyItem) utils.Portions {
	var t utils.Portions
	for _, it := range items {
		t = t.Add(itemPortions(&it))
	}
	return t
}

func itemPortions(it *models.DailyItem) utils.Portions {
	return utils.Portions{
		Kcal:    it.Kcal,
		Protein: it.ProteinUnits,
		Carb:    it.CarbUnits,
		Fat:     it.FatUnits,
		Veg:     it.VegUnits,
		Fruit:   it.FruitUnits,
	}
}

// recomputeTotals rewrites the cached totals of a log from its items.
func recomputeTotals(tx *gorm.DB, logID uint) (utils.Portions, error) {
	var items []models.DailyItem
	if err := tx.Where("daily_log_id = ?", logID).Find(&items).Error; err != nil {
		return utils.Portions{}, err
	}
	t := sumItems(items)
	err := tx.Model(&models.DailyLog{}).Where("id = ?", logID).Updates(map[string]any{
		"total_kcal":          t.Kcal,
		"total_protein_units": t.Protein,
		"total_carb_units":    t.Carb,
		"total_fat_units":     t.Fat,
		"total_veg_units":     t.Veg,
		"total_fruit_units":   t.Fruit,
	}).Error
	return t, err
}

func loadProfile(db *gorm.DB, userID uint) (*models.Profile, error) {
	var p models.Profile
	if err := db.First(&p, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func goalProgress(t utils.Portions, p *models.Profile) map[string]GoalProgress {
	return map[string]GoalProgress{
		"calories": progress(t.Kcal, p.KcalGoal),
		"protein":  progress(t.Protein, p.ProteinUnits),
		"carb":     progress(t.Carb, p.CarbUnits),
		"fat":      progress(t.Fat, p.FatUnits),
		"veg":      progress(t.Veg, p.VegUnits),
		"fruit":    progress(t.Fruit, p.FruitUnits),
	}
}

// GetDay loads a day and derives its totals from the items.
func (s *DailyLogService) GetDay(userID uint, date string) (*DayView, error) {
	p, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	dl, err := s.EnsureDailyLog(userID, date)
	if err != nil {
		return nil, err
	}
	var items []models.DailyItem
	if err := s.db.Where("daily_log_id = ?", dl.ID).Order("created_at, id").Find(&items).Error; err != nil {
		return nil, err
	}

	view := &DayView{
		Log:    *dl,
		Items:  items,
		Totals: sumItems(items),
		Meals:  make(map[string]MealSummary, len(models.MealCategories)),
		Water:  progress(dl.WaterGlasses, p.WaterDailyGoal),
	}
	for _, m := range models.MealCategories {
		view.Meals[m] = MealSummary{Items: []models.DailyItem{}}
	}
	for _, it := range items {
		ms := view.Meals[it.MealCategory]
		ms.Items = append(ms.Items, it)
		ms.Totals = ms.Totals.Add(itemPortions(&it))
		view.Meals[it.MealCategory] = ms
	}
	view.Progress = goalProgress(view.Totals, p)
	return view, nil
}

// SetWater records the glasses of water drunk on date.
func (s *DailyLogService) SetWater(userID uint, date string, glasses float64) (*models.DailyLog, error) {
	if glasses < 0 {
		return nil, fmt.Errorf("%w: glasses must not be negative", ErrInvalidInput)
	}
	dl, err := s.EnsureDailyLog(userID, date)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(dl).Update("water_glasses", glasses).Error; err != nil {
		return nil, err
	}
	dl.WaterGlasses = glasses
	return dl, nil
}

type dayTotalsRow struct {
	UserID       uint
	Date         string
	Kcal         float64
	ProteinUnits float64
	CarbUnits    float64
	FatUnits     float64
	VegUnits     float64
	FruitUnits   float64
}

func (r dayTotalsRow) portions() utils.Portions {
	return utils.Portions{
		Kcal: r.Kcal, Protein: r.ProteinUnits, Carb: r.CarbUnits,
		Fat: r.FatUnits, Veg: r.VegUnits, Fruit: r.FruitUnits,
	}
}

func itemTotalsQuery(db *gorm.DB) *gorm.DB {
	return db.Table("daily_items").
		Select(`daily_items.user_id AS user_id, daily_logs.date AS date,
			COALESCE(SUM(daily_items.kcal), 0) AS kcal,
			COALESCE(SUM(daily_items.protein_units), 0) AS protein_units,
			COALESCE(SUM(daily_items.carb_units), 0) AS carb_units,
			COALESCE(SUM(daily_items.fat_units), 0) AS fat_units,
			COALESCE(SUM(daily_items.veg_units), 0) AS veg_units,
			COALESCE(SUM(daily_items.fruit_units), 0) AS fruit_units`).
		Joins("JOIN daily_logs ON daily_logs.id = daily_items.daily_log_id").
		Group("daily_items.user_id, daily_logs.date")
}

// History returns one entry per day from..to inclusive, zero for days
// without items.
func (s *DailyLogService) History(userID uint, from, to string) ([]DayTotals, error) {
	f, err := utils.ParseDay(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	t, err := utils.ParseDay(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if t.Before(f) {
		return nil, fmt.Errorf("%w: range ends before it starts", ErrInvalidInput)
	}
	if t.Sub(f) > 366*24*time.Hour {
		return nil, fmt.Errorf("%w: range longer than a year", ErrInvalidInput)
	}

	var rows []dayTotalsRow
	err = itemTotalsQuery(s.db).
		Where("daily_items.user_id = ? AND daily_logs.date BETWEEN ? AND ?", userID, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]utils.Portions, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r.portions()
	}
	days := utils.DaysBetween(f, t)
	out := make([]DayTotals, 0, len(days))
	for _, d := range days {
		out = append(out, DayTotals{Date: d, Totals: byDate[d]})
	}
	return out, nil
}

// TotalsForDate derives every user's totals for one date.
func (s *DailyLogService) TotalsForDate(date string) (map[uint]utils.Portions, error) {
	var rows []dayTotalsRow
	if err := itemTotalsQuery(s.db).Where("daily_logs.date = ?", date).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]utils.Portions, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.portions()
	}
	return out, nil
}
