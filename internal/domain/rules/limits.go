package rules

import "time"

// Day boundaries are UTC everywhere. Every caller that needs a day key goes
// through DayKey so there is exactly one notion of "today".
const dayKeyLayout = "2006-01-02"

func DayKey(now time.Time) string {
	return now.UTC().Format(dayKeyLayout)
}

// NextResetAt returns the next UTC midnight after now.
func NextResetAt(now time.Time) time.Time {
	u := now.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(24 * time.Hour)
}

// Remaining clamps at zero so over-consumed counters (ceiling lowered after
// the fact) never report negative balances.
func Remaining(used, limit int) int {
	left := limit - used
	if left < 0 {
		return 0
	}
	return left
}
