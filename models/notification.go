package models

import "time"

// Notification types.
const (
	NotificationBid        = "bid"
	NotificationSubmission = "submission"
	NotificationDeadline   = "deadline"
	NotificationTicket     = "ticket"
	NotificationSystem     = "system"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type"`
	TaskID    *uint     `gorm:"index" json:"task_id,omitempty"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
