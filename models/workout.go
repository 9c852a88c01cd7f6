package models

import "time"

const (
	WorkoutStrength = "strength"
	WorkoutCardio   = "cardio"
)

// WorkoutLog records one session. Amount is a session count for strength
// and minutes for cardio.
type WorkoutLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	WorkoutType string    `gorm:"size:16;not null" json:"workout_type"`
	Amount      float64   `json:"amount"`
	Date        string    `gorm:"size:10;index;not null" json:"date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
