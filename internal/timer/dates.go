package timer

import (
	"fmt"
	"time"
)

// PickerDate is the raw value handed back by GUI date pickers: a zero-based
// month and a year counted from 1900. It must be normalized to a plain date
// before any rate resolution or ledger operation.
type PickerDate struct {
	Day        int
	MonthIndex int // 0 = January
	YearOffset int // years since 1900
}

// Normalize converts a PickerDate to a calendar date in UTC.
func (p PickerDate) Normalize() (time.Time, error) {
	year := 1900 + p.YearOffset
	if p.MonthIndex < 0 || p.MonthIndex > 11 {
		return time.Time{}, validationErr("month", fmt.Sprintf("index %d out of range", p.MonthIndex))
	}
	month := time.Month(p.MonthIndex + 1)
	if p.Day < 1 || p.Day > daysIn(year, month) {
		return time.Time{}, validationErr("day", fmt.Sprintf("%d out of range for %04d-%02d", p.Day, year, month))
	}
	return time.Date(year, month, p.Day, 0, 0, 0, 0, time.UTC), nil
}

// ISO returns the normalized date formatted as YYYY-MM-DD.
func (p PickerDate) ISO() (string, error) {
	t, err := p.Normalize()
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate parses a YYYY-MM-DD string, returning a ValidationError on
// malformed input.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, validationErr("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}
	return t, nil
}

// ParseDateTime parses a "YYYY-MM-DD HH:MM:SS" string, returning a
// ValidationError on malformed input.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, validationErr("datetime", fmt.Sprintf("%q is not a YYYY-MM-DD HH:MM:SS timestamp", s))
	}
	return t, nil
}

// DayBefore returns the date one calendar day before t, at midnight.
// Used to close the previous temporal version when a new one begins.
func DayBefore(t time.Time) time.Time {
	y, m, d := t.AddDate(0, 0, -1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
