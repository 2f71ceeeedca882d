package stats

import (
	"sort"
	"time"

	"okkstats/internal/ingest"
)

// Aggregate rolls the period's records up into buckets keyed by the chosen
// grouping. The call is pure: identical inputs produce identical buckets, and
// the input slice is never mutated.
//
// Categorization rules:
//   - check hours and checked tasks count only behind the project gate,
//   - markup hours and marked tasks only behind the markup gate,
//   - additional hours go to the row's own bucket behind the project gate,
//     otherwise to the synthetic uncategorized bucket behind the other gate,
//     never to both,
//   - overtime hours count only behind the overtime gate,
//   - idle hours count unconditionally,
//   - Gross always receives the row's full unconditional hour figure.
func Aggregate(records []ingest.Record, period Period, group GroupBy) []Bucket {
	agg := newAccumulator()

	for _, rec := range records {
		if !period.Contains(rec.Date) {
			continue
		}
		switch group {
		case GroupProject:
			addProject(agg, rec)
		case GroupOvertime:
			addOvertime(agg, rec)
		default:
			addPeriodic(agg, rec, group)
		}
	}

	return agg.sorted(group)
}

// addPeriodic handles the Day/Week/Month groupings, where every contribution
// of a row lands in the same time bucket.
func addPeriodic(agg *accumulator, rec ingest.Record, group GroupBy) {
	b := agg.touch(timeKey(rec.Date, group))
	b.Entries++
	b.Gross += rec.GrossHours()
	b.Idle += rec.IdleHours

	if rec.ProjectGate {
		b.Check += rec.PureHours
		b.CheckedTasks += rec.CheckedTasks
	}
	if rec.MarkupGate {
		b.Markup += rec.MarkupHours
		b.MarkedTasks += rec.MarkedTasks
	}
	if rec.ProjectGate || rec.OtherGate {
		b.Other += rec.AdditionalHours
	}
	if rec.OvertimeGate {
		b.Overtime += rec.OvertimeHours
	}
}

// addProject attributes a row to its project bucket. Every row accrues its
// Gross to its own bucket regardless of delivery order; hours attributed to
// the synthetic bucket move there instead, and buckets that end up with no
// hours at all are pruned after the pass.
func addProject(agg *accumulator, rec ingest.Record) {
	own := agg.touch(Key{Project: rec.ProjectName})
	own.Entries++
	own.Gross += rec.GrossHours()
	own.Idle += rec.IdleHours

	if rec.ProjectGate {
		own.Check += rec.PureHours
		own.CheckedTasks += rec.CheckedTasks
		// Own-project attribution takes precedence over the synthetic bucket.
		own.Other += rec.AdditionalHours
	} else if rec.OtherGate && rec.AdditionalHours > 0 {
		uncat := agg.touch(Key{Project: UncategorizedProject})
		uncat.Other += rec.AdditionalHours
		uncat.Gross += rec.AdditionalHours
		uncat.Entries++
		own.Gross -= rec.AdditionalHours
	}
	if rec.MarkupGate {
		own.Markup += rec.MarkupHours
		own.MarkedTasks += rec.MarkedTasks
	}
	if rec.OvertimeGate {
		own.Overtime += rec.OvertimeHours
	}
}

// addOvertime restricts the projection to rows behind the overtime gate.
func addOvertime(agg *accumulator, rec ingest.Record) {
	if !rec.OvertimeGate {
		return
	}
	b := agg.touch(Key{Project: rec.ProjectName})
	b.Overtime += rec.OvertimeHours
	b.Gross += rec.OvertimeHours
	b.CheckedTasks += rec.CheckedTasks
	b.Entries++
}

func timeKey(date time.Time, group GroupBy) Key {
	switch group {
	case GroupWeek:
		isoYear, isoWeek := date.ISOWeek()
		return Key{ISOYear: isoYear, ISOWeek: isoWeek}
	case GroupMonth:
		return Key{Year: date.Year(), Month: date.Month()}
	default:
		return Key{Day: date}
	}
}

// accumulator keeps buckets addressable by key label while remembering
// first-seen order for the descending sort's tie break.
type accumulator struct {
	buckets map[string]*Bucket
	order   map[string]int
	next    int
}

func newAccumulator() *accumulator {
	return &accumulator{
		buckets: make(map[string]*Bucket),
		order:   make(map[string]int),
	}
}

func (a *accumulator) touch(key Key) *Bucket {
	label := key.Label()
	if b, ok := a.buckets[label]; ok {
		return b
	}
	b := &Bucket{Key: key}
	a.buckets[label] = b
	a.order[label] = a.next
	a.next++
	return b
}

func (a *accumulator) sorted(group GroupBy) []Bucket {
	out := make([]Bucket, 0, len(a.buckets))
	for _, b := range a.buckets {
		// A project bucket whose hours were all attributed elsewhere holds
		// only an entry count; it carries no information, drop it.
		if group == GroupProject && b.hourless() {
			continue
		}
		out = append(out, *b)
	}

	switch group {
	case GroupProject, GroupOvertime:
		// Busiest first; ties keep first-seen order.
		sort.SliceStable(out, func(i, j int) bool {
			ti, tj := metric(out[i], group), metric(out[j], group)
			if ti != tj {
				return ti > tj
			}
			return a.order[out[i].Key.Label()] < a.order[out[j].Key.Label()]
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			return less(out[i].Key, out[j].Key)
		})
	}
	return out
}

func metric(b Bucket, group GroupBy) float64 {
	if group == GroupOvertime {
		return b.Overtime
	}
	return b.Total()
}

func less(a, b Key) bool {
	switch {
	case !a.Day.IsZero():
		return a.Day.Before(b.Day)
	case a.ISOWeek != 0:
		if a.ISOYear != b.ISOYear {
			return a.ISOYear < b.ISOYear
		}
		return a.ISOWeek < b.ISOWeek
	default:
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	}
}
