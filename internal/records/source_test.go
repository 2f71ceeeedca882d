package records

import (
	"testing"

	"github.com/stretchr/testify/require"

	"okkstats/internal/ingest"
)

func TestMemorySourcePushesFullList(t *testing.T) {
	src := NewMemorySource()

	var got [][]ingest.RawRecord
	src.Subscribe(func(rows []ingest.RawRecord) {
		got = append(got, rows)
	})

	first := []ingest.RawRecord{{"Date": "01.06.2024"}}
	second := []ingest.RawRecord{{"Date": "01.06.2024"}, {"Date": "02.06.2024"}}
	src.Push(first)
	src.Push(second)

	require.Len(t, got, 2)
	require.Len(t, got[0], 1)
	// Each delivery carries the complete current dataset, not a diff.
	require.Len(t, got[1], 2)
}

func TestMemorySourceMultipleSubscribers(t *testing.T) {
	src := NewMemorySource()
	var a, b int
	src.Subscribe(func(rows []ingest.RawRecord) { a = len(rows) })
	src.Subscribe(func(rows []ingest.RawRecord) { b = len(rows) })

	src.Push([]ingest.RawRecord{{}, {}, {}})
	require.Equal(t, 3, a)
	require.Equal(t, 3, b)
}
