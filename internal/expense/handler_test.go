package expense

import (
	"testing"
	"time"

	"exchange-backend/internal/models"
)

func TestBookingDate_LateNightBeforeCutoff(t *testing.T) {
	setting := models.ShopSetting{DayCutoffHour: 2, DayCutoffMinute: 0}

	// 01:30 with a 02:00 cutoff still belongs to the previous business day.
	now := time.Date(2025, 12, 10, 1, 30, 0, 0, time.UTC)
	got := bookingDate(now, setting)
	want := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("bookingDate(%v) = %v, want %v", now, got, want)
	}
}

func TestBookingDate_AfterCutoff(t *testing.T) {
	setting := models.ShopSetting{DayCutoffHour: 2, DayCutoffMinute: 0}

	now := time.Date(2025, 12, 10, 10, 0, 0, 0, time.UTC)
	got := bookingDate(now, setting)
	want := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("bookingDate(%v) = %v, want %v", now, got, want)
	}
}

func TestBookingDate_MidnightCutoff(t *testing.T) {
	setting := models.ShopSetting{}

	// With the default cutoff the calendar day and the business day agree,
	// even just after midnight.
	now := time.Date(2025, 12, 10, 0, 30, 0, 0, time.UTC)
	got := bookingDate(now, setting)
	want := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("bookingDate(%v) = %v, want %v", now, got, want)
	}
}
