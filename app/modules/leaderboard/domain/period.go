package leaderboarddomain

import (
	"strconv"
	"time"
)

// DefaultEventYear resolves which Advent of Code event is current: this year
// during December, the previous year the rest of the time.
func DefaultEventYear(now time.Time) int {
	if now.Month() != time.December {
		return now.Year() - 1
	}
	return now.Year()
}

// PeriodKey is the tracking-period identifier for an event year. Snapshots
// and completion markers are scoped to it; a new key starts fresh state.
func PeriodKey(year int) string {
	return strconv.Itoa(year)
}
