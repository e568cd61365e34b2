package util

import (
	"fmt"
	"time"
)

// Wire formats for calendar dates and wall-clock times.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

// ParseClock parses an HH:MM wall-clock time.
func ParseClock(clock string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t, nil
}

// CombineDateAndTime combines a YYYY-MM-DD date and an HH:MM time into one
// comparable instant. Both parts must already be well-formed.
func CombineDateAndTime(date, clock string) (time.Time, error) {
	return time.Parse(DateLayout+" "+ClockLayout, date+" "+clock)
}

// IsDateInPast reports whether date falls strictly before today. The
// comparison is date-only: the time-of-day of "now" is ignored.
func IsDateInPast(date string, now time.Time) (bool, error) {
	d, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today), nil
}

// IsEndAfterStart reports whether the HH:MM end time falls strictly after
// the HH:MM start time.
func IsEndAfterStart(startTime, endTime string) (bool, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return false, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return false, err
	}
	return end.After(start), nil
}
