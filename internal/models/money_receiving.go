package models

import "time"

// MoneyReceiving: funds a staff member personally collected (e.g. a digital
// wallet channel billed to their own account) and still has to hand over to
// the shop. Confirmation is a separate approval step by an owner or manager;
// until then the amount counts toward "staff owes".
type MoneyReceiving struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Currency    Currency   `gorm:"size:3;not null" json:"currency"`
	Method      string     `gorm:"size:30;not null" json:"method"` // esewa | khalti | bank | other
	Reference   string     `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	IsConfirmed bool       `gorm:"default:false;index" json:"is_confirmed"`
	ConfirmedBy *uint      `json:"confirmed_by"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	StaffID     uint       `gorm:"index;not null" json:"staff_id"`
	Staff       User       `json:"-"`
	Timestamp   time.Time  `gorm:"index;not null" json:"timestamp"`
	Description string     `gorm:"size:255" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
