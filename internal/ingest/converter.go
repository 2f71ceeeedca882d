package ingest

import (
	"log/slog"
	"sync/atomic"

	"okkstats/internal/ingest/metrics"
)

// UnassignedProject is the display name for rows without a project value.
const UnassignedProject = "Без проекта"

// Converter turns raw rows into normalized records. Rows whose date cannot be
// interpreted are silently excluded from every aggregate; the drop counter is
// the only trace they leave.
type Converter struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	dropped atomic.Uint64
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets a logger for diagnostics on dropped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// NewConverter constructs a Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert normalizes the full raw row list. Order is preserved for rows that
// survive; the rest are counted and skipped.
func (c *Converter) Convert(rows []RawRecord) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := c.convertOne(row)
		if !ok {
			c.dropped.Add(1)
			if c.metrics != nil {
				c.metrics.RowsDropped.Inc()
			}
			continue
		}
		if c.metrics != nil {
			c.metrics.RowsConverted.Inc()
		}
		out = append(out, rec)
	}
	return out
}

// Dropped reports how many rows have been excluded since construction.
func (c *Converter) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Converter) convertOne(row RawRecord) (Record, bool) {
	date, ok := NormalizeDate(Resolve(row, FieldDate))
	if !ok {
		if c.logger != nil {
			c.logger.Debug("dropping row with unparseable date", "value", Resolve(row, FieldDate))
		}
		return Record{}, false
	}

	name := asString(Resolve(row, FieldProject))
	if name == "" {
		name = UnassignedProject
	}

	return Record{
		Date:            date,
		ProjectName:     name,
		PureHours:       asHours(Resolve(row, FieldPureHours)),
		MarkupHours:     asHours(Resolve(row, FieldMarkupHours)),
		AdditionalHours: asHours(Resolve(row, FieldAdditionalHours)),
		OvertimeHours:   asHours(Resolve(row, FieldOvertimeHours)),
		IdleHours:       asHours(Resolve(row, FieldIdleHours)),
		CheckedTasks:    asHours(Resolve(row, FieldCheckedTasks)),
		MarkedTasks:     asHours(Resolve(row, FieldMarkedTasks)),
		ProjectGate:     asGate(Resolve(row, FieldProjectCheck)),
		MarkupGate:      asGate(Resolve(row, FieldMarkupCheck)),
		OtherGate:       asGate(Resolve(row, FieldOtherCheck)),
		OvertimeGate:    asGate(Resolve(row, FieldOvertimeCheck)),
	}, true
}
