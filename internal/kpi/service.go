package kpi

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"okkstats/pkg/platform/sentinel"
)

// QuarterSummary is the read model for one quarter of the performance view.
type QuarterSummary struct {
	Year      int            `json:"year"`
	Quarter   int            `json:"quarter"`
	Targets   QuarterTargets `json:"targets"`
	Grade     Grade          `json:"grade"`
	Latest    *Entry         `json:"latest,omitempty"`
	Counts    EntryCounts    `json:"counts"`
	Windows   []Transition   `json:"windows,omitempty"`
	TotalBand Band           `json:"totalBand"`
}

// EntryCounts aggregates entry review states.
type EntryCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Summarize assembles the quarter read model from document state. Unknown
// quarters yield zeroed targets rather than an error; the view renders them
// as empty. Only entries dated inside the quarter are counted.
func Summarize(targets Targets, grade Grade, windows []Transition, entries []Entry, year, quarter int) (QuarterSummary, error) {
	if quarter < 1 || quarter > 4 {
		return QuarterSummary{}, fmt.Errorf("quarter %d out of range", quarter)
	}

	var qt QuarterTargets
	if byQuarter, ok := targets[year]; ok {
		qt = byQuarter[quarter]
	}

	var inQuarter []Entry
	for _, e := range entries {
		if e.Date.Year() == year && QuarterOf(e.Date) == quarter {
			inQuarter = append(inQuarter, e)
		}
	}
	entries = inQuarter

	s := QuarterSummary{
		Year:      year,
		Quarter:   quarter,
		Targets:   qt,
		Grade:     grade,
		Windows:   windows,
		Counts:    countEntries(entries),
		TotalBand: BandOf(qt.Total),
	}
	if len(entries) > 0 {
		latest := entries[0]
		for _, e := range entries[1:] {
			if e.Date.After(latest.Date) {
				latest = e
			}
		}
		s.Latest = &latest
	}
	return s, nil
}

func countEntries(entries []Entry) EntryCounts {
	c := EntryCounts{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusApproved:
			c.Approved++
		case StatusPending:
		default:
			c.Rejected++
		}
	}
	return c
}

// NewEntry builds a pending entry with a fresh ID and an opening history
// item.
func NewEntry(code, period, description, result, author string, now time.Time) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Code:        code,
		Period:      period,
		Date:        now,
		Description: description,
		Result:      result,
		Status:      StatusPending,
		History: []HistoryItem{{
			Date:   now,
			Text:   "entry created",
			Author: author,
		}},
	}
}

// UpdateStatus moves an entry in the list to a new review state, prepending a
// history item. The entries slice is modified in place.
func UpdateStatus(entries []Entry, id string, status EntryStatus, author string, now time.Time) error {
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		if entries[i].Status == status {
			return nil
		}
		old := entries[i].Status
		entries[i].Status = status
		entries[i].History = append([]HistoryItem{{
			Date:   now,
			Text:   fmt.Sprintf("status changed from %s to %s", old, status),
			Author: author,
		}}, entries[i].History...)
		return nil
	}
	return fmt.Errorf("entry %s: %w", id, sentinel.ErrNotFound)
}

// AddComment appends a comment and mirrors it into the history log.
func AddComment(entries []Entry, id, author, text string, now time.Time) error {
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		entries[i].Comments = append(entries[i].Comments, Comment{
			Author: author,
			Date:   now,
			Text:   text,
		})
		entries[i].History = append([]HistoryItem{{
			Date:   now,
			Text:   "comment added",
			Author: author,
		}}, entries[i].History...)
		return nil
	}
	return fmt.Errorf("entry %s: %w", id, sentinel.ErrNotFound)
}
