package services

import (
	"errors"
	"fmt"

	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

type WorkoutInput struct {
	WorkoutType string  `json:"workout_type" binding:"required"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Notes       string  `json:"notes"`
}

// WeekSummary covers Sunday through Saturday.
type WeekSummary struct {
	Start         string              `json:"start"`
	End           string              `json:"end"`
	StrengthCount float64             `json:"strength_count"`
	CardioMinutes float64             `json:"cardio_minutes"`
	StrengthGoal  GoalProgress        `json:"strength_goal"`
	CardioGoal    GoalProgress        `json:"cardio_goal"`
	Logs          []models.WorkoutLog `json:"logs"`
}

type WorkoutService struct {
	db   *gorm.DB
	logs *DailyLogService
}

func NewWorkoutService(db *gorm.DB, logs *DailyLogService) *WorkoutService {
	return &WorkoutService{db: db, logs: logs}
}

func (s *WorkoutService) Add(userID uint, in WorkoutInput) (*models.WorkoutLog, error) {
	switch in.WorkoutType {
	case models.WorkoutStrength:
		if in.Amount == 0 {
			in.Amount = 1
		}
	case models.WorkoutCardio:
	default:
		return nil, fmt.Errorf("%w: workout type must be strength or cardio", ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	date, err := s.logs.ResolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	w := models.WorkoutLog{UserID: userID, WorkoutType: in.WorkoutType, Amount: in.Amount, Date: date, Notes: in.Notes}
	if err := s.db.Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// List returns the newest workouts first, optionally bounded by date.
func (s *WorkoutService) List(userID uint, from, to string) ([]models.WorkoutLog, error) {
	q := s.db.Where("user_id = ?", userID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	out := []models.WorkoutLog{}
	err := q.Order("date desc, id desc").Limit(200).Find(&out).Error
	return out, err
}

func (s *WorkoutService) Delete(userID, id uint) error {
	var w models.WorkoutLog
	if err := s.db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("workout %d: %w", id, ErrNotFound)
		}
		return err
	}
	if w.UserID != userID {
		return fmt.Errorf("workout %d: %w", id, ErrForbidden)
	}
	return s.db.Delete(&w).Error
}

// Week sums the workouts of the week holding date against the weekly goals.
func (s *WorkoutService) Week(userID uint, date string) (*WeekSummary, error) {
	date, err := s.logs.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	p, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	day, _ := utils.ParseDay(date)
	start, end := utils.WeekRange(day)

	ws := &WeekSummary{Start: start, End: end, Logs: []models.WorkoutLog{}}
	if err := s.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date, id").Find(&ws.Logs).Error; err != nil {
		return nil, err
	}
	for _, w := range ws.Logs {
		switch w.WorkoutType {
		case models.WorkoutStrength:
			ws.StrengthCount += w.Amount
		case models.WorkoutCardio:
			ws.CardioMinutes += w.Amount
		}
	}
	ws.StrengthGoal = progress(ws.StrengthCount, p.WeeklyStrengthWorkouts)
	ws.CardioGoal = progress(ws.CardioMinutes, p.WeeklyCardioMinutes)
	return ws, nil
}
