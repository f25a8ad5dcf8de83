package checkin

import "time"

// DayKey formats an instant as the calendar date it falls on in loc.
// The key is what the one-per-day uniqueness constraint indexes, so two
// instants share a key exactly when they fall between the same pair of
// local midnights.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// DayBounds returns the half-open [start, end) window of the calendar day
// that t falls on in loc. Used by the stats counters.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
