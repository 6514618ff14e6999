package timetricks

import (
	"time"
)

const (
	dayFormat = "20060102"
)

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

// DaysIn returns the number of days in the month. Day zero of the next month
// normalizes to the last day of this one.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MidMonth returns noon on the 15th of the month in loc. It stands in for the
// whole month when one representative day is enough.
func MidMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 15, 12, 0, 0, 0, loc)
}
