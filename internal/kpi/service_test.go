package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"okkstats/pkg/platform/sentinel"
)

func TestSummarize(t *testing.T) {
	targets := Targets{
		2024: {2: QuarterTargets{Total: 85}},
	}
	grade := Grade{Current: "middle", Next: "senior"}
	entries := []Entry{
		{ID: "a", Date: time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC), Status: StatusApproved},
		{ID: "b", Date: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), Status: StatusPending},
		{ID: "c", Date: time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), Status: StatusRejected},
		{ID: "other-quarter", Date: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), Status: StatusApproved},
	}

	s, err := Summarize(targets, grade, nil, entries, 2024, 2)
	require.NoError(t, err)
	require.Equal(t, 85, s.Targets.Total)
	require.Equal(t, BandHigh, s.TotalBand)
	require.Equal(t, "b", s.Latest.ID)
	require.Equal(t, EntryCounts{Total: 3, Approved: 1, Rejected: 1}, s.Counts)

	t.Run("unknown quarter yields zero targets", func(t *testing.T) {
		s, err := Summarize(targets, grade, nil, nil, 2024, 3)
		require.NoError(t, err)
		require.Zero(t, s.Targets.Total)
		require.Equal(t, BandLow, s.TotalBand)
		require.Nil(t, s.Latest)
	})

	t.Run("quarter out of range", func(t *testing.T) {
		_, err := Summarize(targets, grade, nil, nil, 2024, 5)
		require.Error(t, err)
		_, err = Summarize(targets, grade, nil, nil, 2024, 0)
		require.Error(t, err)
	})
}

func TestEntryLifecycle(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	e := NewEntry("K-1", "2024-Q2", "tooling", "shipped", "alice", now)
	require.NotEmpty(t, e.ID)
	require.Equal(t, StatusPending, e.Status)
	require.Len(t, e.History, 1)

	entries := []Entry{e}

	require.NoError(t, UpdateStatus(entries, e.ID, StatusApproved, "bob", now.Add(time.Hour)))
	require.Equal(t, StatusApproved, entries[0].Status)
	// Newest history first.
	require.Contains(t, entries[0].History[0].Text, "pending")
	require.Contains(t, entries[0].History[0].Text, "approved")

	t.Run("same status is a no-op", func(t *testing.T) {
		require.NoError(t, UpdateStatus(entries, e.ID, StatusApproved, "bob", now))
		require.Len(t, entries[0].History, 2)
	})

	require.NoError(t, AddComment(entries, e.ID, "bob", "looks good", now.Add(2*time.Hour)))
	require.Len(t, entries[0].Comments, 1)
	require.Equal(t, "looks good", entries[0].Comments[0].Text)

	t.Run("missing entry", func(t *testing.T) {
		require.ErrorIs(t, UpdateStatus(entries, "nope", StatusRejected, "bob", now), sentinel.ErrNotFound)
		require.ErrorIs(t, AddComment(entries, "nope", "bob", "hi", now), sentinel.ErrNotFound)
	})
}

func TestBandOf(t *testing.T) {
	require.Equal(t, BandHigh, BandOf(80))
	require.Equal(t, BandMid, BandOf(79))
	require.Equal(t, BandMid, BandOf(60))
	require.Equal(t, BandLow, BandOf(59))
	require.Equal(t, BandLow, BandOf(0))
}

func TestQuarterOf(t *testing.T) {
	require.Equal(t, 1, QuarterOf(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 2, QuarterOf(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 4, QuarterOf(time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)))
}
