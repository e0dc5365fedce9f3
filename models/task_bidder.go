package models

import "time"

// TaskBidder joins a tasker to a task they have bid on. Uniqueness of the
// (task_id, bidder_id) pair is enforced by an existence check in the bidding
// handler, not by a database constraint.
type TaskBidder struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TaskID   uint      `gorm:"not null;index" json:"task_id"`
	BidderID uint      `gorm:"not null;index" json:"bidder_id"`
	BidDate  time.Time `json:"bid_date"`
}

func (TaskBidder) TableName() string {
	return "task_bidders"
}
