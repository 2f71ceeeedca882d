package ingest

import (
	"strconv"
	"strings"
	"time"
)

// genericLayouts are tried last, for sources that hand dates over as
// preformatted strings.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
}

// NormalizeDate converts the heterogeneous date encodings of the record
// source into a calendar date at local midnight. The second return is false
// when the value cannot be interpreted as a date; callers drop such rows.
func NormalizeDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return midnight(val), true
	case float64:
		return fromEpochSeconds(int64(val))
	case int64:
		return fromEpochSeconds(val)
	case int:
		return fromEpochSeconds(int64(val))
	case string:
		return parseDateString(val)
	default:
		return time.Time{}, false
	}
}

// fromEpochSeconds interprets a numeric value as Unix epoch seconds. The
// source encodes date columns that way; zero and negatives are rejected as
// placeholder cells.
func fromEpochSeconds(sec int64) (time.Time, bool) {
	if sec <= 0 {
		return time.Time{}, false
	}
	return midnight(time.Unix(sec, 0)), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Positional DD.MM.YYYY, the legacy manual-entry format.
	if parts := strings.Split(s, "."); len(parts) == 3 {
		day, errD := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		year, errY := strconv.Atoi(parts[2])
		if errD == nil && errM == nil && errY == nil &&
			day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 1000 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
