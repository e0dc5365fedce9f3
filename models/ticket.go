package models

import "time"

// Ticket statuses.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

type Ticket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskerID  uint      `gorm:"not null;index" json:"tasker_id"`
	Subject   string    `gorm:"type:varchar(200);not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Status    string    `gorm:"type:varchar(20);default:'open'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type TicketReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	FromAdmin bool      `gorm:"default:false" json:"from_admin"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (TicketReply) TableName() string {
	return "ticket_replies"
}
