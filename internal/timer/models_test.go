package timer

import (
	"testing"
	"time"
)

func TestComputeDerived(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("computes hours, cost and bonus", func(t *testing.T) {
		end := start.Add(2 * time.Hour)
		e := &TimeEntry{StartTime: start, EndTime: &end}
		e.ComputeDerived(Rates{Wage: 100, BonusPercent: 0.25})

		if e.TotalTime != 2.0 {
			t.Errorf("TotalTime = %v, want 2.0", e.TotalTime)
		}
		if e.Cost != 200 {
			t.Errorf("Cost = %v, want 200", e.Cost)
		}
		if e.UserBonus != 50 {
			t.Errorf("UserBonus = %v, want 50", e.UserBonus)
		}
		if e.Wage != 100 || e.Bonus != 0.25 {
			t.Errorf("snapshots = (%v, %v), want (100, 0.25)", e.Wage, e.Bonus)
		}
	})

	t.Run("fractional spans keep full precision", func(t *testing.T) {
		end := start.Add(90 * time.Minute)
		e := &TimeEntry{StartTime: start, EndTime: &end}
		e.ComputeDerived(Rates{Wage: 100})

		if e.TotalTime != 1.5 {
			t.Errorf("TotalTime = %v, want 1.5", e.TotalTime)
		}
		if e.Cost != 150 {
			t.Errorf("Cost = %v, want 150", e.Cost)
		}
	})

	t.Run("zero rates yield zero earnings", func(t *testing.T) {
		end := start.Add(time.Hour)
		e := &TimeEntry{StartTime: start, EndTime: &end}
		e.ComputeDerived(Rates{})

		if e.TotalTime != 1.0 {
			t.Errorf("TotalTime = %v, want 1.0", e.TotalTime)
		}
		if e.Cost != 0 || e.UserBonus != 0 {
			t.Errorf("Cost = %v, UserBonus = %v, want 0, 0", e.Cost, e.UserBonus)
		}
	})

	t.Run("negative duration is kept as-is", func(t *testing.T) {
		end := start.Add(-time.Hour)
		e := &TimeEntry{StartTime: start, EndTime: &end}
		e.ComputeDerived(Rates{Wage: 100})

		if e.TotalTime != -1.0 {
			t.Errorf("TotalTime = %v, want -1.0", e.TotalTime)
		}
		if e.Cost != -100 {
			t.Errorf("Cost = %v, want -100", e.Cost)
		}
	})

	t.Run("open entry is untouched", func(t *testing.T) {
		e := &TimeEntry{StartTime: start}
		e.ComputeDerived(Rates{Wage: 100})

		if e.TotalTime != 0 || e.Cost != 0 {
			t.Errorf("open entry got derived values: total=%v cost=%v", e.TotalTime, e.Cost)
		}
	})
}

func TestElapsed(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("running entry measures against now", func(t *testing.T) {
		e := &TimeEntry{StartTime: start}
		got := e.Elapsed(start.Add(30 * time.Minute))
		if got != 30*time.Minute {
			t.Errorf("Elapsed() = %v, want 30m", got)
		}
	})

	t.Run("closed entry ignores now", func(t *testing.T) {
		end := start.Add(time.Hour)
		e := &TimeEntry{StartTime: start, EndTime: &end}
		got := e.Elapsed(start.Add(5 * time.Hour))
		if got != time.Hour {
			t.Errorf("Elapsed() = %v, want 1h", got)
		}
	})
}

func TestDateKeyOf(t *testing.T) {
	got := DateKeyOf(time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC))
	if got != 20240307 {
		t.Errorf("DateKeyOf() = %d, want 20240307", got)
	}
}
