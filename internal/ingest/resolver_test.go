package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("first alias wins", func(t *testing.T) {
		row := RawRecord{"Дата": "01.02.2024", "Date": "02.02.2024"}
		require.Equal(t, "01.02.2024", Resolve(row, FieldDate))
	})

	t.Run("later alias used when earlier missing", func(t *testing.T) {
		row := RawRecord{"Hours": 3.5}
		require.Equal(t, 3.5, Resolve(row, FieldPureHours))
	})

	t.Run("verbatim beats sanitized across the whole list", func(t *testing.T) {
		// A sanitized hit on the first alias must not shadow a verbatim hit
		// on a later alias.
		row := RawRecord{
			"Checked_Tasks": 7.0, // verbatim, third alias
		}
		require.Equal(t, 7.0, Resolve(row, FieldCheckedTasks))
	})

	t.Run("sanitized fallback", func(t *testing.T) {
		// "Other Check" stored with a space collapses to Other_Check.
		row := RawRecord{"Other_Check": true}
		require.Equal(t, true, Resolve(row, FieldOtherCheck))
	})

	t.Run("unknown field", func(t *testing.T) {
		require.Nil(t, Resolve(RawRecord{"x": 1}, "nope"))
	})

	t.Run("no alias present", func(t *testing.T) {
		require.Nil(t, Resolve(RawRecord{"Unrelated": 1}, FieldIdleHours))
	})
}

func TestGateTruthTable(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"float one", float64(1), true},
		{"int one", 1, true},
		{"string true", "true", true},
		{"string TRUE", "TRUE", true},
		{"float zero", float64(0), false},
		{"float two", float64(2), false},
		{"string yes", "yes", false},
		{"nil", nil, false},
		{"empty string", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, asGate(tc.in))
		})
	}
}

func TestHourCoercion(t *testing.T) {
	require.Equal(t, 2.5, asHours(2.5))
	require.Equal(t, 4.0, asHours(4))
	require.Equal(t, 1.5, asHours(" 1.5 "))
	require.Equal(t, 0.0, asHours("n/a"))
	require.Equal(t, 0.0, asHours(nil))
	require.Equal(t, 0.0, asHours(-3.0))
	require.Equal(t, 0.0, asHours(true))
}
