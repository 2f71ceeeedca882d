// Package records delivers the raw timesheet rows the aggregation core
// consumes. A source pushes the full current row list to its subscribers
// whenever the underlying dataset changes.
package records

import (
	"context"
	"slices"
	"sync"

	"okkstats/internal/ingest"
)

// Source is a push-based raw row feed.
type Source interface {
	// Subscribe registers fn to receive the complete row list on every
	// dataset change. The slice must be treated as read-only.
	Subscribe(fn func([]ingest.RawRecord))
	// Start begins delivering updates until ctx is canceled.
	Start(ctx context.Context) error
}

// MemorySource is an in-process Source fed through Push. It backs tests and
// deployments where rows arrive over the HTTP surface.
type MemorySource struct {
	mu   sync.Mutex
	rows []ingest.RawRecord
	subs []func([]ingest.RawRecord)
}

func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

func (m *MemorySource) Subscribe(fn func([]ingest.RawRecord)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

func (m *MemorySource) Start(context.Context) error { return nil }

// Push replaces the dataset and notifies every subscriber.
func (m *MemorySource) Push(rows []ingest.RawRecord) {
	m.mu.Lock()
	m.rows = rows
	subs := slices.Clone(m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(rows)
	}
}
