package models

import "time"

type ExpenseCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expense always reduces available cash of its currency on its date.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Category    ExpenseCategory `json:"-"`
	Currency    Currency        `gorm:"size:3;not null" json:"currency"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	StaffID     uint            `gorm:"index;not null" json:"staff_id"`
	Staff       User            `json:"-"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
