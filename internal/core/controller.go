// Package core owns the application state: the canonical record list and the
// settings document. Presentation layers read aggregates and mutate settings
// exclusively through the Controller.
package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"okkstats/internal/calendar"
	"okkstats/internal/ingest"
	"okkstats/internal/settings"
	"okkstats/internal/stats"
)

// WorkloadSummary relates worked hours to the calendar norm of a period.
// Actual counts pure, additional and markup hours unconditionally; gates
// narrow the categorized breakdown, not a person's workload.
type WorkloadSummary struct {
	Period  stats.Period `json:"period"`
	Actual  float64      `json:"actual"`
	Norm    int          `json:"norm"`
	Percent int          `json:"percent"`
}

// CalendarDay describes one date: its kind and norm under the current
// exception table plus the per-project breakdown of hours logged on it.
type CalendarDay struct {
	Date     time.Time        `json:"date"`
	Kind     calendar.DayKind `json:"-"`
	KindName string           `json:"kind"`
	Norm     int              `json:"norm"`
	Actual   float64          `json:"actual"`
	Projects []stats.Bucket   `json:"projects"`
}

// Controller is the single owner of mutable application state.
type Controller struct {
	conv       *ingest.Converter
	reconciler *settings.Reconciler
	log        *slog.Logger

	mu      sync.RWMutex
	records []ingest.Record
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates a Controller around a converter and a settings reconciler.
func New(conv *ingest.Converter, rec *settings.Reconciler, opts ...Option) *Controller {
	c := &Controller{
		conv:       conv,
		reconciler: rec,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRows replaces the dataset with the converted form of the given raw rows.
// Record sources deliver full lists, so replacement, not append, is correct.
func (c *Controller) SetRows(rows []ingest.RawRecord) {
	recs := c.conv.Convert(rows)
	c.mu.Lock()
	c.records = recs
	c.mu.Unlock()
	c.log.Info("dataset replaced", "rows", len(rows), "records", len(recs))
}

// Aggregates returns the bucketed rollup of the period under the grouping.
func (c *Controller) Aggregates(period stats.Period, group stats.GroupBy) []stats.Bucket {
	c.mu.RLock()
	recs := c.records
	c.mu.RUnlock()
	return stats.Aggregate(recs, period, group)
}

// WorkloadSummary compares the period's worked hours against its calendar
// norm. For the all-time period the norm spans the dataset's own date range.
func (c *Controller) WorkloadSummary(period stats.Period) WorkloadSummary {
	exceptions := c.reconciler.Document().Global.Exceptions

	c.mu.RLock()
	recs := c.records
	c.mu.RUnlock()

	var actual float64
	var first, last time.Time
	for _, rec := range recs {
		if !period.Contains(rec.Date) {
			continue
		}
		actual += rec.PureHours + rec.AdditionalHours + rec.MarkupHours
		if first.IsZero() || rec.Date.Before(first) {
			first = rec.Date
		}
		if rec.Date.After(last) {
			last = rec.Date
		}
	}

	start, end, ok := period.Bounds(time.Local)
	if !ok {
		start, end = first, last
	}
	norm := 0
	if !start.IsZero() {
		norm = exceptions.RangeNorm(start, end)
	}
	return WorkloadSummary{
		Period:  period,
		Actual:  actual,
		Norm:    norm,
		Percent: calendar.WorkloadPercent(actual, norm),
	}
}

// CalendarDay returns the classification and per-project hours of one date.
func (c *Controller) CalendarDay(date time.Time) CalendarDay {
	exceptions := c.reconciler.Document().Global.Exceptions
	kind := exceptions.Kind(date)

	c.mu.RLock()
	recs := c.records
	c.mu.RUnlock()

	var sameDay []ingest.Record
	for _, rec := range recs {
		if rec.Date.Year() == date.Year() && rec.Date.YearDay() == date.YearDay() {
			sameDay = append(sameDay, rec)
		}
	}
	projects := stats.Aggregate(sameDay, stats.AllTime(), stats.GroupProject)

	var actual float64
	for _, rec := range sameDay {
		actual += rec.PureHours + rec.AdditionalHours + rec.MarkupHours
	}
	return CalendarDay{
		Date:     date,
		Kind:     kind,
		KindName: kind.String(),
		Norm:     exceptions.DailyNorm(date),
		Actual:   actual,
		Projects: projects,
	}
}

// Settings returns a copy of the current merged document.
func (c *Controller) Settings() settings.Document {
	return c.reconciler.Document()
}

// MutateSettings applies a patch to the shared document tier.
func (c *Controller) MutateSettings(ctx context.Context, patch func(*settings.Global)) error {
	return c.reconciler.Mutate(ctx, patch)
}

// MutatePersonal updates the personal tier.
func (c *Controller) MutatePersonal(ctx context.Context, p settings.Personal) error {
	return c.reconciler.MutatePersonal(ctx, p)
}

// SubscribeSettings registers a callback for applied settings changes.
func (c *Controller) SubscribeSettings(fn func(settings.Document)) {
	c.reconciler.Subscribe(fn)
}
