package models

import "time"

type CreditType string

const (
	// CreditGiven: money the shop lent to a customer.
	CreditGiven CreditType = "credit_given"
	// PaymentReceived: money recovered from a customer.
	PaymentReceived CreditType = "payment_received"
)

type CreditTransaction struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Type        CreditType `gorm:"size:20;not null" json:"type"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Currency    Currency   `gorm:"size:3;not null;default:'NPR'" json:"currency"` // in practice always NPR
	CustomerID  uint       `gorm:"index;not null" json:"customer_id"`
	Customer    Customer   `json:"-"`
	StaffID     uint       `gorm:"index;not null" json:"staff_id"`
	Staff       User       `json:"-"`
	Timestamp   time.Time  `gorm:"index;not null" json:"timestamp"`
	Description string     `gorm:"size:255" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
