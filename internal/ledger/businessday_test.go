package ledger

import (
	"testing"
	"time"
)

func TestBucketDate_MidnightCutoff(t *testing.T) {
	ts := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	day := BucketDate(ts, 0, 0)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("got %v want %v", day, want)
	}
}

func TestBucketDate_LateNightBelongsToPreviousDay(t *testing.T) {
	// Shop closes at 02:00; a 01:30 transaction is still the prior business day.
	ts := time.Date(2025, 3, 15, 1, 30, 0, 0, time.UTC)
	day := BucketDate(ts, 2, 0)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("got %v want %v", day, want)
	}

	// At exactly the cutoff the new day starts.
	ts = time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC)
	day = BucketDate(ts, 2, 0)
	want = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("at cutoff: got %v want %v", day, want)
	}
}

func TestDayWindow_CoversExactly24Hours(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	from, to := DayWindow(day, 2, 30)

	wantFrom := time.Date(2025, 3, 14, 2, 30, 0, 0, time.UTC)
	wantTo := time.Date(2025, 3, 15, 2, 30, 0, 0, time.UTC)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Errorf("window got [%v, %v) want [%v, %v)", from, to, wantFrom, wantTo)
	}
}

func TestDayWindowAndBucketAgree(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	from, to := DayWindow(day, 4, 0)

	// Every timestamp inside the window buckets back to the same day.
	for _, ts := range []time.Time{from, from.Add(time.Hour), to.Add(-time.Minute)} {
		if got := BucketDate(ts, 4, 0); !got.Equal(day) {
			t.Errorf("timestamp %v bucketed to %v, want %v", ts, got, day)
		}
	}
	// The window end belongs to the next day.
	if got := BucketDate(to, 4, 0); !got.Equal(day.AddDate(0, 0, 1)) {
		t.Errorf("window end bucketed to %v, want next day", got)
	}
}
