package timeutil

import (
	"errors"
	"time"
)

// ErrInvalidMonth is returned by MonthRange for month values outside 1-12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// MonthRange returns the closed interval covering the calendar month:
// the first day at 00:00:00 and the last day at 23:59:59, in local time.
// December ends on 31 December of the same year; the rollover into the
// next year only affects the day-0 normalization below.
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	begin := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	// Day 0 of the following month normalizes to the last day of this
	// month, which handles 28/29/30/31-day months and leap years.
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, time.Local)
	return begin, end, nil
}

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func DayKey(value time.Time) string {
	return StartOfDay(value).Format("2006-01-02")
}
