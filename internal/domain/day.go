package domain

import "time"

// DayLayout is the calendar-day format used for observation dates.
const DayLayout = "2006-01-02"

// Day formats t as a local calendar day.
func Day(t time.Time) string {
	return t.In(time.Local).Format(DayLayout)
}

// ParseDay parses a calendar day in the local time zone.
func ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, time.Local)
}
