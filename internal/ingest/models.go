package ingest

import "time"

// RawRecord is an opaque row as delivered by the record source. Field
// identifiers vary per deployment; the resolver maps them onto canonical
// names.
type RawRecord map[string]any

// Record is a fully normalized timesheet row. Every hour and count field is
// finite and non-negative; gates are strict booleans.
type Record struct {
	Date        time.Time
	ProjectName string

	PureHours       float64
	MarkupHours     float64
	AdditionalHours float64
	OvertimeHours   float64
	IdleHours       float64

	CheckedTasks float64
	MarkedTasks  float64

	ProjectGate  bool
	MarkupGate   bool
	OtherGate    bool
	OvertimeGate bool
}

// GrossHours is the unconditional total for the row. Gating narrows the
// categorized breakdown, never this figure.
func (r Record) GrossHours() float64 {
	return r.PureHours + r.AdditionalHours + r.MarkupHours + r.OvertimeHours + r.IdleHours
}
