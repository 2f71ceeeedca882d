// Package calendar computes expected work hours from the per-year exception
// tables maintained in the shared settings document.
package calendar

import (
	"fmt"
	"math"
	"time"
)

// Day kinds, in precedence order: a date marked both Holiday and ShortDay for
// its year counts as a holiday.
type DayKind int

const (
	Workday DayKind = iota
	ShortDay
	Weekend
	Holiday
)

func (k DayKind) String() string {
	switch k {
	case Holiday:
		return "holiday"
	case ShortDay:
		return "short-day"
	case Weekend:
		return "weekend"
	default:
		return "workday"
	}
}

// Daily norms in hours.
const (
	fullDayNorm  = 8
	shortDayNorm = 7
)

// YearExceptions lists holiday and short-day markers for one calendar year,
// keyed by "DD.MM". A recurring date must be entered once per year.
type YearExceptions struct {
	Holidays  []string `json:"holidays"`
	ShortDays []string `json:"shortDays"`
}

// ExceptionSet maps a calendar year to its exception table.
type ExceptionSet map[int]YearExceptions

// DayKey formats a date as the "DD.MM" key used by exception tables.
func DayKey(date time.Time) string {
	return fmt.Sprintf("%02d.%02d", date.Day(), int(date.Month()))
}

// Kind classifies a date against the exception table of its own year.
func (s ExceptionSet) Kind(date time.Time) DayKind {
	key := DayKey(date)
	year := s[date.Year()]
	if contains(year.Holidays, key) {
		return Holiday
	}
	if contains(year.ShortDays, key) {
		return ShortDay
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Weekend
	}
	return Workday
}

// DailyNorm returns the expected work hours for a date: 0 for holidays and
// weekends, 7 for short days, 8 otherwise.
func (s ExceptionSet) DailyNorm(date time.Time) int {
	switch s.Kind(date) {
	case Holiday, Weekend:
		return 0
	case ShortDay:
		return shortDayNorm
	default:
		return fullDayNorm
	}
}

// RangeNorm sums DailyNorm over every day in [start, end] inclusive. An
// inverted range yields 0.
func (s ExceptionSet) RangeNorm(start, end time.Time) int {
	norm := 0
	for d := midnight(start); !d.After(midnight(end)); d = d.AddDate(0, 0, 1) {
		norm += s.DailyNorm(d)
	}
	return norm
}

// WorkloadPercent is round(actual/norm*100), 0 when the norm is 0. The result
// is deliberately unclamped; over 100 means overload.
func WorkloadPercent(actual float64, norm int) int {
	if norm <= 0 {
		return 0
	}
	return int(math.Round(actual / float64(norm) * 100))
}

// WeekStart returns the Monday beginning the ISO week containing date.
func WeekStart(date time.Time) time.Time {
	d := midnight(date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func contains(list []string, key string) bool {
	for _, v := range list {
		if v == key {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
