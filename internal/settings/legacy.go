package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"okkstats/internal/calendar"
	"okkstats/internal/kpi"

	"okkstats/pkg/platform/sentinel"
)

// wireGlobal is the stored document shape. Besides the current fields it
// carries the pre-migration ones: flat holiday and short-day lists that were
// not yet scoped to a year, and contribution entries stored at the top level.
type wireGlobal struct {
	Exceptions  calendar.ExceptionSet `json:"exceptions,omitempty"`
	Years       []int                 `json:"years,omitempty"`
	Grade       kpi.Grade             `json:"grade"`
	KPITargets  kpi.Targets           `json:"kpiTargets,omitempty"`
	Transitions []kpi.Transition      `json:"transitions,omitempty"`
	Entries     []kpi.Entry           `json:"entries,omitempty"`
	Profiles    map[string]Personal   `json:"profiles,omitempty"`

	LegacyHolidays  []string    `json:"holidays,omitempty"`
	LegacyShortDays []string    `json:"shortDays,omitempty"`
	LegacyEntries   []kpi.Entry `json:"contributions,omitempty"`
}

// DecodeGlobal parses a stored payload, upgrading legacy shapes in the
// process. Flat exception lists are keyed to the year of now; top-level
// contribution lists move to the unified entries field unless the payload
// already carries one. The second return reports whether anything was
// migrated, so callers can schedule a write-back.
func DecodeGlobal(raw []byte, now time.Time) (Global, bool, error) {
	if len(raw) == 0 {
		return Global{}, false, fmt.Errorf("decode settings: empty payload: %w", sentinel.ErrMalformed)
	}
	var wire wireGlobal
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Global{}, false, fmt.Errorf("decode settings: %w", err)
	}

	g := Global{
		Exceptions:  wire.Exceptions,
		Years:       wire.Years,
		Grade:       wire.Grade,
		KPITargets:  wire.KPITargets,
		Transitions: wire.Transitions,
		Entries:     wire.Entries,
		Profiles:    wire.Profiles,
	}
	if g.Exceptions == nil {
		g.Exceptions = calendar.ExceptionSet{}
	}
	if g.Profiles == nil {
		g.Profiles = map[string]Personal{}
	}

	migrated := false
	if len(wire.LegacyHolidays) > 0 || len(wire.LegacyShortDays) > 0 {
		year := now.Year()
		ex := g.Exceptions[year]
		ex.Holidays = mergeDays(ex.Holidays, wire.LegacyHolidays)
		ex.ShortDays = mergeDays(ex.ShortDays, wire.LegacyShortDays)
		g.Exceptions[year] = ex
		migrated = true
	}
	if len(wire.LegacyEntries) > 0 && len(g.Entries) == 0 {
		g.Entries = wire.LegacyEntries
		migrated = true
	}
	return g, migrated, nil
}

// EncodeGlobal serializes a document for storage in the current shape.
func EncodeGlobal(g Global) ([]byte, error) {
	raw, err := json.Marshal(wireGlobal{
		Exceptions:  g.Exceptions,
		Years:       g.Years,
		Grade:       g.Grade,
		KPITargets:  g.KPITargets,
		Transitions: g.Transitions,
		Entries:     g.Entries,
		Profiles:    g.Profiles,
	})
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return raw, nil
}

func mergeDays(have, add []string) []string {
	seen := make(map[string]struct{}, len(have))
	for _, d := range have {
		seen[d] = struct{}{}
	}
	for _, d := range add {
		if _, ok := seen[d]; ok {
			continue
		}
		have = append(have, d)
		seen[d] = struct{}{}
	}
	return have
}
