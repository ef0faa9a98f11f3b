package domain

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of calendar dates.
const DayLayout = "2006-01-02"

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// NextDayStart returns midnight of the day after t's calendar day in loc.
// AddDate keeps DST days at 23 or 25 hours.
func NextDayStart(t time.Time, loc *time.Location) time.Time {
	next := DayStart(t, loc).AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, loc)
}

// ParseDay parses a YYYY-MM-DD date as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return d, nil
}
