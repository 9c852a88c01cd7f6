package models

import "time"

type BodyMeasurement struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          uint   `gorm:"index;not null" json:"user_id"`
	MeasurementDate string `gorm:"size:10;index;not null" json:"measurement_date"`
	RecordedBy      uint   `json:"recorded_by"`

	BodyWeight        float64 `json:"body_weight"`
	BMI               float64 `json:"bmi"`
	BodyFatPercentage float64 `json:"body_fat_percentage"`
	BodyFatMass       float64 `json:"body_fat_mass"`
	LeanMass          float64 `json:"lean_mass"`

	WaistCircumference    float64 `json:"waist_circumference"`
	ArmCircumference      float64 `json:"arm_circumference"`
	ThighCircumference    float64 `json:"thigh_circumference"`
	NeckCircumference     float64 `json:"neck_circumference"`
	ShoulderCircumference float64 `json:"shoulder_circumference"`

	BicepsSkinfold      float64 `json:"biceps_skinfold"`
	TricepsSkinfold     float64 `json:"triceps_skinfold"`
	SubscapularSkinfold float64 `json:"subscapular_skinfold"`
	SuprailiacSkinfold  float64 `json:"suprailiac_skinfold"`

	CreatedAt time.Time `json:"created_at"`
}
