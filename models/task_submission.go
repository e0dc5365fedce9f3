package models

import "time"

// Submission review statuses.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

type TaskSubmission struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TaskID          uint      `gorm:"not null;index" json:"task_id"`
	BidderID        uint      `gorm:"not null;index" json:"bidder_id"`
	Status          string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	RejectionReason *string   `gorm:"type:text" json:"rejection_reason,omitempty"`
	FileName        string    `gorm:"type:varchar(255)" json:"file_name"`
	FileURL         string    `gorm:"type:varchar(500)" json:"file_url"`
	SubmittedAt     time.Time `json:"submitted_at"`
	UpdatedAt       time.Time `json:"-"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}
