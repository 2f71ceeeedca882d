package stats

import (
	"fmt"
	"time"
)

// UncategorizedProject is the synthetic bucket receiving additional hours of
// rows that carry the other-gate but no project gate.
const UncategorizedProject = "Иные задачи"

// Period selects the rows entering an aggregation. The zero value means the
// whole dataset; Month narrows a Year.
type Period struct {
	Year  int
	Month time.Month
}

// AllTime covers every record.
func AllTime() Period { return Period{} }

// YearOf covers one calendar year.
func YearOf(year int) Period { return Period{Year: year} }

// MonthOf covers one calendar month.
func MonthOf(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// IsAll reports whether the period places no restriction on dates.
func (p Period) IsAll() bool { return p.Year == 0 }

// Contains reports whether a date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	if p.IsAll() {
		return true
	}
	if date.Year() != p.Year {
		return false
	}
	return p.Month == 0 || date.Month() == p.Month
}

// Bounds returns the inclusive date range of the period. ok is false for the
// all-time period, whose bounds depend on the data.
func (p Period) Bounds(loc *time.Location) (start, end time.Time, ok bool) {
	if p.IsAll() {
		return time.Time{}, time.Time{}, false
	}
	if p.Month == 0 {
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(p.Year, time.December, 31, 0, 0, 0, 0, loc)
		return start, end, true
	}
	start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, -1)
	return start, end, true
}

// GroupBy selects the bucket key of an aggregation.
type GroupBy int

const (
	GroupDay GroupBy = iota
	GroupWeek
	GroupMonth
	GroupProject
	GroupOvertime
)

// ParseGroupBy maps the transport-level group names onto GroupBy values.
func ParseGroupBy(s string) (GroupBy, error) {
	switch s {
	case "day":
		return GroupDay, nil
	case "week":
		return GroupWeek, nil
	case "month":
		return GroupMonth, nil
	case "project":
		return GroupProject, nil
	case "overtime":
		return GroupOvertime, nil
	default:
		return 0, fmt.Errorf("unknown grouping %q", s)
	}
}

// Key identifies a bucket. Only the fields of the active grouping are set.
type Key struct {
	Day     time.Time  `json:"day,omitzero"`
	ISOYear int        `json:"isoYear,omitempty"`
	ISOWeek int        `json:"isoWeek,omitempty"`
	Year    int        `json:"year,omitempty"`
	Month   time.Month `json:"month,omitempty"`
	Project string     `json:"project,omitempty"`
}

// Label renders the key in the form shown to presentation layers.
func (k Key) Label() string {
	switch {
	case !k.Day.IsZero():
		return k.Day.Format("2006-01-02")
	case k.ISOWeek != 0:
		return fmt.Sprintf("%d-W%02d", k.ISOYear, k.ISOWeek)
	case k.Month != 0:
		return fmt.Sprintf("%d-%02d", k.Year, int(k.Month))
	default:
		return k.Project
	}
}

// Bucket accumulates the categorized subtotals of one aggregation key.
// Gross is the unconditional hour figure: gating narrows the categorized
// breakdown but never Gross.
type Bucket struct {
	Key Key `json:"key"`

	Check    float64 `json:"check"`
	Markup   float64 `json:"markup"`
	Other    float64 `json:"other"`
	Overtime float64 `json:"overtime"`
	Idle     float64 `json:"idle"`
	Gross    float64 `json:"gross"`

	CheckedTasks float64 `json:"checkedTasks"`
	MarkedTasks  float64 `json:"markedTasks"`

	// Entries counts contributing rows, used by overtime reporting.
	Entries int `json:"entries"`
}

// Total is the categorized hour sum. Idle and overtime never enter it.
func (b Bucket) Total() float64 {
	return b.Check + b.Markup + b.Other
}

// hourless reports whether the bucket accumulated no hours or task counts.
func (b Bucket) hourless() bool {
	return b.Gross == 0 && b.Check == 0 && b.Markup == 0 && b.Other == 0 &&
		b.Overtime == 0 && b.Idle == 0 && b.CheckedTasks == 0 && b.MarkedTasks == 0
}

// CheckRate is checked tasks per check hour, 0 when no check hours exist.
func (b Bucket) CheckRate() float64 {
	if b.Check <= 0 {
		return 0
	}
	return b.CheckedTasks / b.Check
}

// MarkupRate is marked tasks per markup hour, 0 when no markup hours exist.
func (b Bucket) MarkupRate() float64 {
	if b.Markup <= 0 {
		return 0
	}
	return b.MarkedTasks / b.Markup
}

// OvertimeRate is overtime hours per checked task, 0 when no tasks exist.
func (b Bucket) OvertimeRate() float64 {
	if b.CheckedTasks <= 0 {
		return 0
	}
	return b.Overtime / b.CheckedTasks
}
