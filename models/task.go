package models

import "time"

// Task categories. Category decides the payout tier and the bid cost.
const (
	CategoryGenAI = "genai"
	CategoryCreAI = "creai"
)

// Task lifecycle statuses.
const (
	TaskStatusPending  = "pending"
	TaskStatusActive   = "active"
	TaskStatusInactive = "inactive"
	TaskStatusExpired  = "expired"
)

// MaxBidders is the fixed per-task bidder cap.
const MaxBidders = 10

type Task struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Title        string    `gorm:"type:varchar(200);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"type:varchar(20);not null" json:"category"`
	Payout       float64   `gorm:"type:decimal(15,2);not null" json:"payout"`
	TaskerPayout float64   `gorm:"type:decimal(15,2);not null" json:"tasker_payout"`
	PlatformFee  float64   `gorm:"type:decimal(15,2);not null" json:"platform_fee"`
	BidsNeeded   int       `gorm:"not null" json:"bids_needed"`
	MaxBidders   int       `gorm:"not null;default:10" json:"max_bidders"`
	CurrentBids  int       `gorm:"not null;default:0" json:"current_bids"`
	Deadline     time.Time `json:"deadline"`
	Status       string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// BidCost returns the bid-balance price of placing a bid on a task of the
// given category: 10 for genai, 5 for anything else.
func BidCost(category string) int {
	if category == CategoryGenAI {
		return 10
	}
	return 5
}

// CategoryDefaults holds the payout derivation applied to bulk-uploaded tasks.
type CategoryDefaults struct {
	Payout       float64
	TaskerPayout float64
	PlatformFee  float64
	BidsNeeded   int
}

// DefaultsForCategory returns the upload defaults for a task category.
// genai: 500/400/100 with 10 bids; creai: 250/200/50 with 5 bids.
func DefaultsForCategory(category string) CategoryDefaults {
	if category == CategoryGenAI {
		return CategoryDefaults{Payout: 500, TaskerPayout: 400, PlatformFee: 100, BidsNeeded: 10}
	}
	return CategoryDefaults{Payout: 250, TaskerPayout: 200, PlatformFee: 50, BidsNeeded: 5}
}
