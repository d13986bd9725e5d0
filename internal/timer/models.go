package timer

import "time"

// TimeLayout is the storage format for timestamps, matching SQLite's
// datetime() output.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the storage format for plain dates.
const DateLayout = "2006-01-02"

// OpenEndSentinel stands in for "+infinity" when comparing against an
// open-ended validity interval. All interval queries must use the same value.
const OpenEndSentinel = "2099-12-31"

// Customer is one temporal version of a customer. The name is the stable
// identity across versions; each wage change inserts a new row and closes
// the previous one. IsCurrent is a separate axis from versioning: a
// disabled customer keeps its open ValidTo but is excluded from active
// selection.
type Customer struct {
	ID         int64
	Name       string
	Wage       float64 // hourly wage in currency units
	SortOrder  int
	OrgURL     string // Azure DevOps organization, empty if unused
	PATToken   string
	ValidFrom  time.Time
	ValidTo    *time.Time // nil = currently open version
	IsCurrent  bool
	InsertedAt time.Time
}

// Project belongs to exactly one customer. Disabling is a soft delete;
// re-adding a disabled project reactivates the existing row.
type Project struct {
	ID         int64
	CustomerID int64
	Name       string
	WorkItemID int64 // default Azure DevOps work item, 0 if none
	IsCurrent  bool
}

// Bonus is one effective-dated bonus percentage. Percent is stored as a
// fraction (0.25 = 25%). At most one row has a nil EndDate at a time.
type Bonus struct {
	ID        int64
	Percent   float64
	StartDate time.Time
	EndDate   *time.Time // nil = open-ended
}

// TimeEntry is one span of work on a (customer, project) pair. Derived
// fields (TotalTime, Cost, UserBonus) are computed when the span closes or
// when its bounds are edited, never while it runs.
type TimeEntry struct {
	ID           int64
	CustomerID   int64
	CustomerName string
	ProjectID    int64
	ProjectName  string
	DateKey      int // YYYYMMDD of the start date
	StartTime    time.Time
	EndTime      *time.Time // nil = running
	TotalTime    float64    // fractional hours
	Wage         float64    // wage snapshot resolved at close time
	Bonus        float64    // bonus fraction snapshot resolved at close time
	Cost         float64    // TotalTime * Wage
	UserBonus    float64    // Cost * Bonus
	WorkItemID   int64
	Comment      string
}

// Rates is the result of rate resolution for a customer on a date.
// A resolution miss yields the zero value, never an error.
type Rates struct {
	Wage         float64
	BonusPercent float64
}

// ComputeDerived fills in the derived fields of a closed entry from its
// time bounds and the given rates. Negative or zero durations are kept
// as-is; callers may flag them but the ledger does not reject them.
func (e *TimeEntry) ComputeDerived(r Rates) {
	if e.EndTime == nil {
		return
	}
	e.TotalTime = e.EndTime.Sub(e.StartTime).Hours()
	e.Wage = r.Wage
	e.Bonus = r.BonusPercent
	e.Cost = e.TotalTime * r.Wage
	e.UserBonus = e.Cost * r.BonusPercent
}

// Elapsed returns the running duration of an open entry at the given
// instant, or the closed duration for a finished one.
func (e *TimeEntry) Elapsed(now time.Time) time.Duration {
	if e.EndTime != nil {
		return e.EndTime.Sub(e.StartTime)
	}
	return now.Sub(e.StartTime)
}

// DateKeyOf converts a time to the integer YYYYMMDD key used by the date
// dimension.
func DateKeyOf(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
