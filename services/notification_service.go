package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nutriportions/models"

	"gorm.io/gorm"
)

type NotificationTemplateInput struct {
	Title        string `json:"title" binding:"required"`
	Message      string `json:"message" binding:"required"`
	Trigger      string `json:"trigger" binding:"required"`
	TriggerValue string `json:"trigger_value"`
	IsActive     *bool  `json:"is_active"`
}

// goal keys accepted by goal_reached / goal_missed
var goalKeys = map[string]bool{
	"calories": true, "protein": true, "carb": true, "fat": true, "veg": true, "fruit": true,
}

func parseClock(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: time %q, want HH:MM", ErrInvalidInput, s)
	}
	return t.Format("15:04"), nil
}

// parseTimes reads "HH:MM[,HH:MM...]".
func parseTimes(v string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := parseClock(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one time is required", ErrInvalidInput)
	}
	return out, nil
}

// parseMissed reads "goal@HH:MM".
func parseMissed(v string) (string, string, error) {
	goal, clock, ok := strings.Cut(v, "@")
	if !ok {
		return "", "", fmt.Errorf("%w: goal_missed value must look like calories@20:00", ErrInvalidInput)
	}
	goal = strings.TrimSpace(goal)
	if !goalKeys[goal] {
		return "", "", fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, goal)
	}
	c, err := parseClock(clock)
	return goal, c, err
}

func parseInactiveDays(v string) (int, error) {
	if strings.TrimSpace(v) == "" {
		return 2, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: inactive value must be a number of days", ErrInvalidInput)
	}
	return n, nil
}

func validateTrigger(trigger, value string) error {
	switch trigger {
	case models.TriggerTime:
		_, err := parseTimes(value)
		return err
	case models.TriggerGoalReached:
		if !goalKeys[strings.TrimSpace(value)] {
			return fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, value)
		}
		return nil
	case models.TriggerGoalMissed:
		_, _, err := parseMissed(value)
		return err
	case models.TriggerInactive:
		_, err := parseInactiveDays(value)
		return err
	}
	return fmt.Errorf("%w: unknown trigger %q", ErrInvalidInput, trigger)
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) List() ([]models.NotificationTemplate, error) {
	var out []models.NotificationTemplate
	err := s.db.Order("created_at desc, id desc").Find(&out).Error
	return out, err
}

func (s *NotificationService) Create(in NotificationTemplateInput) (*models.NotificationTemplate, error) {
	if err := validateTrigger(in.Trigger, in.TriggerValue); err != nil {
		return nil, err
	}
	t := models.NotificationTemplate{
		Title:        strings.TrimSpace(in.Title),
		Message:      in.Message,
		Trigger:      in.Trigger,
		TriggerValue: strings.TrimSpace(in.TriggerValue),
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *NotificationService) get(id uint) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &t, nil
}

// Toggle flips a template on or off.
func (s *NotificationService) Toggle(id uint) (*models.NotificationTemplate, error) {
	t, err := s.get(id)
	if err != nil {
		return nil, err
	}
	t.IsActive = !t.IsActive
	if err := s.db.Model(t).Update("is_active", t.IsActive).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *NotificationService) Delete(id uint) error {
	t, err := s.get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(t).Error
}
