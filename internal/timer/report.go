package timer

import "fmt"

// Metric selects what a report sums: worked hours or earned currency
// (cost plus bonus).
type Metric int

const (
	MetricHours Metric = iota
	MetricCurrency
)

// ParseMetric parses a metric name from the CLI.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "hours":
		return MetricHours, nil
	case "currency":
		return MetricCurrency, nil
	default:
		return 0, validationErr("metric", fmt.Sprintf("%q is not one of hours, currency", s))
	}
}

// Period is a reporting time-span selector.
type Period int

const (
	PeriodDay Period = iota
	PeriodWeek
	PeriodMonth
	PeriodYear
	PeriodAllTime
)

// ParsePeriod parses a period name from the CLI.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	case "all", "all-time":
		return PeriodAllTime, nil
	default:
		return 0, validationErr("period", fmt.Sprintf("%q is not one of day, week, month, year, all", s))
	}
}

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	case PeriodAllTime:
		return "all-time"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// ReportRow is one (customer, project) aggregate.
type ReportRow struct {
	CustomerName string
	ProjectName  string
	Value        float64
}

// CustomerTotal is the grand total for one customer across its projects.
type CustomerTotal struct {
	CustomerName string
	Value        float64
}

// Report is the result of an aggregation query.
type Report struct {
	Metric Metric
	Rows   []ReportRow
	Totals []CustomerTotal
}
