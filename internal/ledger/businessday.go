package ledger

import "time"

// The shop often closes after midnight, so a "business day" runs from the
// configured cutoff to the same cutoff next day rather than midnight to
// midnight. The engine itself never sees raw timestamps; handlers bucket
// rows with these helpers before calling Compute.

// BucketDate returns the business day (normalized to 00:00) a timestamp
// belongs to. Anything before the cutoff counts as the previous day.
func BucketDate(ts time.Time, cutoffHour, cutoffMinute int) time.Time {
	cutoff := time.Date(ts.Year(), ts.Month(), ts.Day(), cutoffHour, cutoffMinute, 0, 0, ts.Location())
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	if ts.Before(cutoff) {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// DayWindow returns the half-open [from, to) timestamp range covering one
// business day.
func DayWindow(day time.Time, cutoffHour, cutoffMinute int) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), day.Day(), cutoffHour, cutoffMinute, 0, 0, day.Location())
	return from, from.AddDate(0, 0, 1)
}
