package models

import "time"

type TransactionType string

const (
	// TransactionSell: the shop receives NPR and pays out INR.
	TransactionSell TransactionType = "sell"
	// TransactionBuy: the shop receives INR and pays out NPR.
	TransactionBuy TransactionType = "buy"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

type ExchangeTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Type         TransactionType `gorm:"size:10;not null" json:"type"`
	FromCurrency Currency        `gorm:"size:3;not null" json:"from_currency"` // what the customer hands over
	FromAmount   float64         `gorm:"not null" json:"from_amount"`
	ToCurrency   Currency        `gorm:"size:3;not null" json:"to_currency"` // what the shop pays out
	ToAmount     float64         `gorm:"not null" json:"to_amount"`
	Rate         float64         `gorm:"not null" json:"rate"` // agreed rate, kept for the receipt
	Method       PaymentMethod   `gorm:"size:10;not null" json:"method"`
	CustomerID   *uint           `gorm:"index" json:"customer_id"`
	Customer     *Customer       `json:"-"`
	StaffID      uint            `gorm:"index;not null" json:"staff_id"`
	Staff        User            `json:"-"`
	Timestamp    time.Time       `gorm:"index;not null" json:"timestamp"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
