package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is both the login identity and the coaching targets of one person.
type Profile struct {
	gorm.Model
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"not null" json:"-"`
	AuthProvider   string     `gorm:"size:16;default:password" json:"auth_provider"` // password | google | apple
	Name           string     `json:"name"`
	Role           string     `gorm:"size:16;default:user" json:"role"`
	Gender         string     `gorm:"size:8" json:"gender"` // male | female
	Birthday       *time.Time `json:"birthday,omitempty"`
	HeightCm       float64    `json:"height"`
	ActivityLevel  string     `json:"activity_level"`
	ProfilePicture string     `json:"profile_picture"`

	KcalGoal               float64 `json:"kcal_goal"`
	ProteinUnits           float64 `json:"protein_units"`
	CarbUnits              float64 `json:"carb_units"`
	FatUnits               float64 `json:"fat_units"`
	VegUnits               float64 `json:"veg_units"`
	FruitUnits             float64 `json:"fruit_units"`
	WaterDailyGoal         float64 `json:"water_daily_goal"`
	WeeklyCardioMinutes    float64 `json:"weekly_cardio_minutes"`
	WeeklyStrengthWorkouts float64 `json:"weekly_strength_workouts"`
	TargetsOverride        bool    `json:"targets_override"`
	TargetTemplateID       *uint   `json:"target_template_id,omitempty"`

	ResetCode      string     `gorm:"size:16" json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
}

// ApplyDefaultGoals fills zero-valued goals with the coaching defaults.
func (p *Profile) ApplyDefaultGoals() {
	if p.KcalGoal == 0 {
		p.KcalGoal = 1240
	}
	if p.ProteinUnits == 0 {
		p.ProteinUnits = 3
	}
	if p.CarbUnits == 0 {
		p.CarbUnits = 3
	}
	if p.FatUnits == 0 {
		p.FatUnits = 1
	}
	if p.VegUnits == 0 {
		p.VegUnits = 4
	}
	if p.FruitUnits == 0 {
		p.FruitUnits = 1
	}
	if p.WaterDailyGoal == 0 {
		p.WaterDailyGoal = 12
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
}

func (p *Profile) IsAdmin() bool { return p.Role == RoleAdmin }
