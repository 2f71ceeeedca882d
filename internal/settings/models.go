// Package settings maintains the shared configuration document and
// reconciles local optimistic writes against asynchronous remote updates.
package settings

import (
	"okkstats/internal/calendar"
	"okkstats/internal/kpi"
)

// DocumentKey is the key the shared document lives under in the remote store.
const DocumentKey = "okkstats:settings"

// Global is the authoritative, collaborator-shared part of the document.
type Global struct {
	Exceptions  calendar.ExceptionSet `json:"exceptions"`
	Years       []int                 `json:"years"`
	Grade       kpi.Grade             `json:"grade"`
	KPITargets  kpi.Targets           `json:"kpiTargets"`
	Transitions []kpi.Transition      `json:"transitions"`
	Entries     []kpi.Entry           `json:"entries"`

	// Profiles mirrors the personal preferences of each known identity so
	// switching identity on a shared document restores them.
	Profiles map[string]Personal `json:"profiles"`
}

// Personal holds per-client presentation preferences. These never enter the
// guarded global hash directly; cross-identity clobbering is avoided by
// keeping them out of the canonical subset (Profiles carries them instead).
type Personal struct {
	Theme       string `json:"theme"`
	Accent      string `json:"accent"`
	DisplayName string `json:"displayName"`
}

// Document is the merged in-memory configuration.
type Document struct {
	Global   Global   `json:"global"`
	Personal Personal `json:"personal"`
}

// Defaults is the lowest merge tier.
func Defaults() Document {
	return Document{
		Global: Global{
			Exceptions: calendar.ExceptionSet{},
			KPITargets: kpi.Targets{},
			Profiles:   map[string]Personal{},
		},
		Personal: Personal{
			Theme: "light",
		},
	}
}

// Clone returns a deep copy so subscribers can hold documents without racing
// subsequent mutations.
func (d Document) Clone() Document {
	out := d
	out.Global = d.Global.clone()
	return out
}

func (g Global) clone() Global {
	out := g
	out.Years = append([]int(nil), g.Years...)
	out.Transitions = append([]kpi.Transition(nil), g.Transitions...)
	out.Entries = append([]kpi.Entry(nil), g.Entries...)
	out.Exceptions = make(calendar.ExceptionSet, len(g.Exceptions))
	for year, ex := range g.Exceptions {
		out.Exceptions[year] = calendar.YearExceptions{
			Holidays:  append([]string(nil), ex.Holidays...),
			ShortDays: append([]string(nil), ex.ShortDays...),
		}
	}
	out.KPITargets = make(kpi.Targets, len(g.KPITargets))
	for year, quarters := range g.KPITargets {
		qs := make(map[int]kpi.QuarterTargets, len(quarters))
		for q, t := range quarters {
			qs[q] = t
		}
		out.KPITargets[year] = qs
	}
	out.Profiles = make(map[string]Personal, len(g.Profiles))
	for id, p := range g.Profiles {
		out.Profiles[id] = p
	}
	return out
}
