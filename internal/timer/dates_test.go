package timer

import (
	"errors"
	"testing"
	"time"
)

func TestPickerDateNormalize(t *testing.T) {
	t.Run("converts offsets to a calendar date", func(t *testing.T) {
		p := PickerDate{Day: 15, MonthIndex: 0, YearOffset: 124}
		got, err := p.Normalize()
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Normalize() = %v, want %v", got, want)
		}
	})

	t.Run("accepts leap day", func(t *testing.T) {
		p := PickerDate{Day: 29, MonthIndex: 1, YearOffset: 124}
		if _, err := p.Normalize(); err != nil {
			t.Errorf("Normalize() error = %v", err)
		}
	})

	t.Run("rejects day 29 in a non-leap february", func(t *testing.T) {
		p := PickerDate{Day: 29, MonthIndex: 1, YearOffset: 123}
		_, err := p.Normalize()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Normalize() error = %v, want ValidationError", err)
		}
	})

	t.Run("rejects month index out of range", func(t *testing.T) {
		p := PickerDate{Day: 1, MonthIndex: 12, YearOffset: 124}
		if _, err := p.Normalize(); err == nil {
			t.Error("Normalize() expected error for month index 12")
		}
	})

	t.Run("ISO formats the normalized date", func(t *testing.T) {
		p := PickerDate{Day: 3, MonthIndex: 8, YearOffset: 124}
		got, err := p.ISO()
		if err != nil {
			t.Fatalf("ISO() error = %v", err)
		}
		if got != "2024-09-03" {
			t.Errorf("ISO() = %q, want %q", got, "2024-09-03")
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Run("parses a valid date", func(t *testing.T) {
		got, err := ParseDate("2024-01-15")
		if err != nil {
			t.Fatalf("ParseDate() error = %v", err)
		}
		if got.Year() != 2024 || got.Month() != 1 || got.Day() != 15 {
			t.Errorf("ParseDate() = %v", got)
		}
	})

	t.Run("returns ValidationError on garbage", func(t *testing.T) {
		_, err := ParseDate("15/01/2024")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("ParseDate() error = %v, want ValidationError", err)
		}
	})
}

func TestDayBefore(t *testing.T) {
	t.Run("steps back one day", func(t *testing.T) {
		got := DayBefore(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC))
		want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("DayBefore() = %v, want %v", got, want)
		}
	})

	t.Run("crosses a year boundary", func(t *testing.T) {
		got := DayBefore(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		want := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("DayBefore() = %v, want %v", got, want)
		}
	})
}
