package models

import "time"

// BidTransaction statuses.
const (
	TransactionPending = "Pending"
	TransactionSuccess = "Success"
	TransactionFailed  = "Failed"
)

// BidTransaction records a bid-package purchase. Amount is the price paid,
// Bids the credits bought. Used for revenue reporting.
type BidTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TaskerID        uint      `gorm:"not null;index" json:"tasker_id"`
	Amount          float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Bids            int       `gorm:"not null" json:"bids"`
	Reference       string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`
	Status          string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	TransactionDate time.Time `json:"transaction_date"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (BidTransaction) TableName() string {
	return "bid_transactions"
}
