package services

import (
	"context"
	"fmt"
	"math"

	"nutriportions/utils"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	db   *gorm.DB
	logs *DailyLogService
}

func NewAnalyticsService(db *gorm.DB, logs *DailyLogService) *AnalyticsService {
	return &AnalyticsService{db: db, logs: logs}
}

// ---------- Summary ----------

type NutrAvg struct {
	AvgConsumed float64 `json:"avg_consumed"`
	Goal        float64 `json:"goal,omitempty"`
	AvgPercent  float64 `json:"avg_percent,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

type AnalyticsSummary struct {
	Range struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"range"`

	Days     []DayTotals        `json:"days"`
	Averages map[string]NutrAvg `json:"averages"`

	Metadata struct {
		DaysCounted int `json:"days_counted"`
		DaysLogged  int `json:"days_logged"`
	} `json:"metadata"`
}

type metricKey struct {
	key  string
	unit string
}

var summaryMetrics = []metricKey{
	{"calories", "kcal"},
	{"protein", "units"},
	{"carb", "units"},
	{"fat", "units"},
	{"veg", "units"},
	{"fruit", "units"},
}

// Summary averages the derived daily totals over from..to. Days without
// items count as zero.
func (s *AnalyticsService) Summary(ctx context.Context, userID uint, from, to string) (*AnalyticsSummary, error) {
	if to == "" {
		to = s.logs.Today()
	}
	if from == "" {
		t, err := utils.ParseDay(to)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		from = t.AddDate(0, 0, -6).Format(utils.DateLayout)
	}

	days, err := s.logs.History(userID, from, to)
	if err != nil {
		return nil, err
	}
	p, err := loadProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	type acc struct{ sum, psum float64 }
	m := make(map[string]*acc, len(summaryMetrics))
	for _, k := range summaryMetrics {
		m[k.key] = &acc{}
	}
	logged := 0
	for _, d := range days {
		if d.Totals != (utils.Portions{}) {
			logged++
		}
		for _, k := range summaryMetrics {
			c := consumedFor(d.Totals, k.key)
			m[k.key].sum += c
			if g := goalFor(p, k.key); g > 0 {
				m[k.key].psum += c / g * 100
			}
		}
	}

	out := &AnalyticsSummary{Days: days, Averages: make(map[string]NutrAvg, len(summaryMetrics))}
	out.Range.From = from
	out.Range.To = to
	out.Metadata.DaysCounted = len(days)
	out.Metadata.DaysLogged = logged
	for _, k := range summaryMetrics {
		out.Averages[k.key] = NutrAvg{
			AvgConsumed: avg(m[k.key].sum, len(days)),
			Goal:        goalFor(p, k.key),
			AvgPercent:  avg(m[k.key].psum, len(days)),
			Unit:        k.unit,
		}
	}
	return out, nil
}

// ---------- Weekly Overview ----------

type WeeklyOverviewResponse struct {
	WeekStart string       `json:"week_start"`
	WeekEnd   string       `json:"week_end"`
	Days      []DayChart   `json:"days"`
	Workouts  *WeekSummary `json:"workouts"`
}

type DayChart struct {
	Date        string             `json:"date"`
	Percentages map[string]float64 `json:"percentages"`
}

// WeeklyOverview charts each day of the Sunday-Saturday week containing
// date as percent of goal.
func (s *AnalyticsService) WeeklyOverview(ctx context.Context, userID uint, date string) (*WeeklyOverviewResponse, error) {
	date, err := s.logs.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	d, _ := utils.ParseDay(date)
	from, to := utils.WeekRange(d)

	days, err := s.logs.History(userID, from, to)
	if err != nil {
		return nil, err
	}
	p, err := loadProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	out := &WeeklyOverviewResponse{WeekStart: from, WeekEnd: to, Days: make([]DayChart, 0, len(days))}
	for _, day := range days {
		pcts := make(map[string]float64, len(summaryMetrics))
		for _, k := range summaryMetrics {
			pcts[k.key] = pct(consumedFor(day.Totals, k.key), goalFor(p, k.key))
		}
		out.Days = append(out.Days, DayChart{Date: day.Date, Percentages: pcts})
	}

	w, err := NewWorkoutService(s.db.WithContext(ctx), s.logs).Week(userID, date)
	if err != nil {
		return nil, err
	}
	out.Workouts = w
	return out, nil
}

func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return round2((actual / goal) * 100.0)
}

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
