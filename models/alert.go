package models

import "time"

// Notification template triggers.
const (
	TriggerTime        = "time"
	TriggerGoalReached = "goal_reached"
	TriggerGoalMissed  = "goal_missed"
	TriggerInactive    = "inactive"
)

type NotificationTemplate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Message      string    `gorm:"type:text" json:"message"`
	Trigger      string    `gorm:"size:20;not null" json:"trigger"`
	TriggerValue string    `json:"trigger_value"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NotificationDelivery marks a template as sent to a user for a slot: a
// date, or a date and HH:MM for timed templates.
type NotificationDelivery struct {
	ID         uint   `gorm:"primaryKey"`
	TemplateID uint   `gorm:"uniqueIndex:idx_delivery;not null"`
	UserID     uint   `gorm:"uniqueIndex:idx_delivery;not null"`
	Slot       string `gorm:"size:20;uniqueIndex:idx_delivery;not null"`
	CreatedAt  time.Time
}
