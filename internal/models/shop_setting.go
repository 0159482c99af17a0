package models

import "time"

// ShopSetting: single-row table. The day cutoff decides which business day a
// timestamp belongs to; the shop closes after midnight so the default is not
// necessarily 00:00.
type ShopSetting struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	DayCutoffHour   int       `gorm:"not null;default:0" json:"day_cutoff_hour"`
	DayCutoffMinute int       `gorm:"not null;default:0" json:"day_cutoff_minute"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
