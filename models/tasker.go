package models

import "time"

type Tasker struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Email          string     `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"size:255;not null" json:"-"`
	Phone          *string    `gorm:"size:20" json:"phone,omitempty"`
	Bids           int        `gorm:"not null;default:0" json:"bids"`
	TasksCompleted int        `gorm:"not null;default:0" json:"tasks_completed"`
	TotalPayouts   float64    `gorm:"type:decimal(15,2);default:0" json:"total_payouts"`
	PendingPayouts float64    `gorm:"type:decimal(15,2);default:0" json:"pending_payouts"`
	IsSuspended    bool       `gorm:"default:false" json:"is_suspended"`
	SuspendedAt    *time.Time `json:"suspended_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
}

func (Tasker) TableName() string {
	return "taskers"
}
