package services

import (
	"errors"
	"fmt"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"gorm.io/gorm"
)

type MeasurementInput struct {
	Date              string           `json:"measurement_date"`
	Weight            float64          `json:"body_weight" binding:"required"`
	HeightCm          *float64         `json:"height"`
	BodyFatPercentage *float64         `json:"body_fat_percentage"`
	Skinfolds         *utils.Skinfolds `json:"skinfolds"`
	Waist             float64          `json:"waist_circumference"`
	Arm               float64          `json:"arm_circumference"`
	Thigh             float64          `json:"thigh_circumference"`
	Neck              float64          `json:"neck_circumference"`
	Shoulder          float64          `json:"shoulder_circumference"`
}

// TrendPoint is one value of a measurement series.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type MeasurementTrend struct {
	Count         int                     `json:"count"`
	Latest        *models.BodyMeasurement `json:"latest,omitempty"`
	BMICategory   string                  `json:"bmi_category,omitempty"`
	WeightChange  float64                 `json:"weight_change"`
	BodyFatChange float64                 `json:"body_fat_change"`
	Weight        []TrendPoint            `json:"weight"`
	BodyFat       []TrendPoint            `json:"body_fat"`
}

const trendPoints = 6

type BodyMeasurementService struct {
	db   *gorm.DB
	logs *DailyLogService
	now  func() time.Time
}

func NewBodyMeasurementService(db *gorm.DB, logs *DailyLogService) *BodyMeasurementService {
	return &BodyMeasurementService{db: db, logs: logs, now: time.Now}
}

// Record stores a measurement for userID, deriving BMI from the profile
// height and body composition from skinfolds when they are given.
func (s *BodyMeasurementService) Record(userID, recordedBy uint, in MeasurementInput) (*models.BodyMeasurement, error) {
	p, err := loadProfile(s.db, userID)
	if err != nil {
		return nil, err
	}
	if in.Weight <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	date, err := s.logs.ResolveDate(in.Date)
	if err != nil {
		return nil, err
	}

	m := models.BodyMeasurement{
		UserID:                userID,
		RecordedBy:            recordedBy,
		MeasurementDate:       date,
		BodyWeight:            in.Weight,
		WaistCircumference:    in.Waist,
		ArmCircumference:      in.Arm,
		ThighCircumference:    in.Thigh,
		NeckCircumference:     in.Neck,
		ShoulderCircumference: in.Shoulder,
	}

	height := p.HeightCm
	if in.HeightCm != nil {
		height = *in.HeightCm
	}
	if height > 0 {
		bmi, err := utils.CalculateBMI(height, in.Weight)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		m.BMI = bmi
	}

	switch {
	case in.Skinfolds != nil:
		if p.Birthday == nil || p.Gender == "" {
			return nil, fmt.Errorf("%w: gender and birthday are needed for a skinfold assessment", ErrInvalidInput)
		}
		age := utils.CalculateAge(*p.Birthday, s.now())
		bc, err := utils.AssessBodyComposition(p.Gender, age, in.Weight, *in.Skinfolds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		m.BicepsSkinfold = in.Skinfolds.Biceps
		m.TricepsSkinfold = in.Skinfolds.Triceps
		m.SubscapularSkinfold = in.Skinfolds.Subscapular
		m.SuprailiacSkinfold = in.Skinfolds.Suprailiac
		m.BodyFatPercentage = bc.FatPercent
		m.BodyFatMass = bc.FatMass
		m.LeanMass = bc.LeanMass
	case in.BodyFatPercentage != nil:
		bf := *in.BodyFatPercentage
		if bf < 3 || bf > 50 {
			return nil, fmt.Errorf("%w: body fat must be between 3 and 50%%", ErrInvalidInput)
		}
		m.BodyFatPercentage = bf
		m.BodyFatMass = utils.Round1(in.Weight * bf / 100)
		m.LeanMass = utils.Round1(in.Weight - m.BodyFatMass)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if in.HeightCm != nil && *in.HeightCm != p.HeightCm {
			return tx.Model(p).Update("height_cm", *in.HeightCm).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// QuickWeight records today's weight alone.
func (s *BodyMeasurementService) QuickWeight(userID uint, weight float64) (*models.BodyMeasurement, error) {
	return s.Record(userID, userID, MeasurementInput{Weight: weight})
}

func (s *BodyMeasurementService) List(userID uint) ([]models.BodyMeasurement, error) {
	var out []models.BodyMeasurement
	err := s.db.Where("user_id = ?", userID).Order("measurement_date, id").Find(&out).Error
	return out, err
}

// Trend compares the latest measurement with the first and returns the last
// few points of each series.
func (s *BodyMeasurementService) Trend(userID uint) (*MeasurementTrend, error) {
	all, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	t := &MeasurementTrend{Count: len(all), Weight: []TrendPoint{}, BodyFat: []TrendPoint{}}
	if len(all) == 0 {
		return t, nil
	}
	first, last := all[0], all[len(all)-1]
	t.Latest = &last
	if last.BMI > 0 {
		t.BMICategory = utils.BMICategory(last.BMI)
	}
	t.WeightChange = utils.Round1(last.BodyWeight - first.BodyWeight)

	var fats []models.BodyMeasurement
	for _, m := range all {
		if m.BodyFatPercentage > 0 {
			fats = append(fats, m)
		}
	}
	if len(fats) > 0 {
		t.BodyFatChange = utils.Round1(fats[len(fats)-1].BodyFatPercentage - fats[0].BodyFatPercentage)
	}

	for _, m := range tail(all, trendPoints) {
		t.Weight = append(t.Weight, TrendPoint{Date: m.MeasurementDate, Value: m.BodyWeight})
	}
	for _, m := range tail(fats, trendPoints) {
		t.BodyFat = append(t.BodyFat, TrendPoint{Date: m.MeasurementDate, Value: m.BodyFatPercentage})
	}
	return t, nil
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func (s *BodyMeasurementService) Delete(userID, id uint) error {
	var m models.BodyMeasurement
	if err := s.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("measurement %d: %w", id, ErrNotFound)
		}
		return err
	}
	if m.UserID != userID {
		return fmt.Errorf("measurement %d: %w", id, ErrForbidden)
	}
	return s.db.Delete(&m).Error
}
