package models

import "time"

// CashCountRecord: one row per (staff, business day). Created when the staff
// member counts the till and starts the day, closed with a second count at
// the end. Closing fields stay nil until the day is closed. The daily ledger
// summary is never stored; it is recomputed from this record plus the day's
// raw rows on every read.
type CashCountRecord struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	StaffID uint      `gorm:"not null;uniqueIndex:idx_cash_count_staff_date" json:"staff_id"`
	Staff   User      `json:"-"`
	Date    time.Time `gorm:"not null;uniqueIndex:idx_cash_count_staff_date" json:"date"` // bucketed business day, 00:00

	OpeningNpr       float64 `gorm:"not null" json:"opening_npr"`
	OpeningInr       float64 `gorm:"not null" json:"opening_inr"`
	OpeningNprDenoms string  `gorm:"type:jsonb;not null" json:"opening_npr_denoms"` // denom label -> count
	OpeningInrDenoms string  `gorm:"type:jsonb;not null" json:"opening_inr_denoms"`

	ClosingNpr       *float64 `json:"closing_npr"`
	ClosingInr       *float64 `json:"closing_inr"`
	ClosingNprDenoms *string  `gorm:"type:jsonb" json:"closing_npr_denoms"`
	ClosingInrDenoms *string  `gorm:"type:jsonb" json:"closing_inr_denoms"`

	IsClosed bool       `gorm:"default:false" json:"is_closed"`
	ClosedAt *time.Time `json:"closed_at"`
	Notes    string     `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
