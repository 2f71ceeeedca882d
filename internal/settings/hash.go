package settings

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"okkstats/internal/calendar"
	"okkstats/internal/kpi"
)

// canonicalGlobal fixes the field set and order that participate in the
// content hash. Personal preferences and per-identity profiles stay out so
// one collaborator's theme change never looks like a global edit.
type canonicalGlobal struct {
	Exceptions  calendar.ExceptionSet `json:"exceptions"`
	Years       []int                 `json:"years"`
	Grade       kpi.Grade             `json:"grade"`
	KPITargets  kpi.Targets           `json:"kpiTargets"`
	Transitions []kpi.Transition      `json:"transitions"`
	Entries     []kpi.Entry           `json:"entries"`
}

// HashGlobal computes the content hash of the shared portion of the document.
// Map keys serialize in sorted order, so equal content always hashes equal.
func HashGlobal(g Global) string {
	raw, err := json.Marshal(canonicalGlobal{
		Exceptions:  g.Exceptions,
		Years:       g.Years,
		Grade:       g.Grade,
		KPITargets:  g.KPITargets,
		Transitions: g.Transitions,
		Entries:     g.Entries,
	})
	if err != nil {
		// Only unsupported types can fail here and the struct has none.
		panic(fmt.Sprintf("settings: hash marshal: %v", err))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}
