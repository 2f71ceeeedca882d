package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDailyNorm(t *testing.T) {
	empty := ExceptionSet{}

	t.Run("weekend is zero", func(t *testing.T) {
		require.Equal(t, 0, empty.DailyNorm(date(2024, time.June, 15))) // Saturday
		require.Equal(t, 0, empty.DailyNorm(date(2024, time.June, 16))) // Sunday
	})

	t.Run("ordinary weekday is eight", func(t *testing.T) {
		require.Equal(t, 8, empty.DailyNorm(date(2024, time.June, 17))) // Monday
	})

	t.Run("short day is seven", func(t *testing.T) {
		set := ExceptionSet{2024: {ShortDays: []string{"22.02"}}}
		require.Equal(t, 7, set.DailyNorm(date(2024, time.February, 22))) // Thursday
	})

	t.Run("holiday wins over short day", func(t *testing.T) {
		set := ExceptionSet{2024: {
			Holidays:  []string{"08.03"},
			ShortDays: []string{"08.03"},
		}}
		require.Equal(t, 0, set.DailyNorm(date(2024, time.March, 8))) // Friday
		require.Equal(t, Holiday, set.Kind(date(2024, time.March, 8)))
	})

	t.Run("exceptions are scoped to their year", func(t *testing.T) {
		set := ExceptionSet{2024: {Holidays: []string{"08.03"}}}
		// Same DD.MM in 2025 is a plain Saturday.
		require.Equal(t, 0, set.DailyNorm(date(2025, time.March, 8)))
		require.Equal(t, Weekend, set.Kind(date(2025, time.March, 8)))
		// And a plain weekday in 2027.
		require.Equal(t, 8, set.DailyNorm(date(2027, time.March, 8)))
	})
}

func TestRangeNorm(t *testing.T) {
	set := ExceptionSet{2024: {
		Holidays:  []string{"12.06"}, // Wednesday
		ShortDays: []string{"11.06"}, // Tuesday
	}}
	// Mon 10.06 .. Sun 16.06: 8 + 7 + 0 + 8 + 8 + 0 + 0
	got := set.RangeNorm(date(2024, time.June, 10), date(2024, time.June, 16))
	require.Equal(t, 31, got)

	t.Run("single day inclusive", func(t *testing.T) {
		require.Equal(t, 8, set.RangeNorm(date(2024, time.June, 10), date(2024, time.June, 10)))
	})

	t.Run("inverted range", func(t *testing.T) {
		require.Equal(t, 0, set.RangeNorm(date(2024, time.June, 16), date(2024, time.June, 10)))
	})
}

func TestWorkloadPercent(t *testing.T) {
	require.Equal(t, 0, WorkloadPercent(10, 0))
	require.Equal(t, 100, WorkloadPercent(40, 40))
	require.Equal(t, 113, WorkloadPercent(45, 40))
	require.Equal(t, 156, WorkloadPercent(62.5, 40)) // unclamped
	require.Equal(t, 0, WorkloadPercent(0, 40))
}

func TestWeekStart(t *testing.T) {
	// Wednesday 2025-01-01 belongs to the week starting Monday 2024-12-30.
	require.Equal(t, date(2024, time.December, 30), WeekStart(date(2025, time.January, 1)))
	// Monday maps to itself.
	require.Equal(t, date(2024, time.December, 30), WeekStart(date(2024, time.December, 30)))
	// Sunday maps back six days.
	require.Equal(t, date(2024, time.December, 30), WeekStart(date(2025, time.January, 5)))
}
