package service

import (
	"time"
)

// DayWindow returns the calendar day containing t in loc as [start, end).
// The end is computed from the calendar so DST transitions produce 23 or 25 hour days.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end
}

// GetNextResetTime returns when the next request window opens
func GetNextResetTime(now time.Time, loc *time.Location) time.Time {
	_, end := DayWindow(now, loc)
	return end
}
