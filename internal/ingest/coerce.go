package ingest

import (
	"math"
	"strconv"
	"strings"
)

// asHours coerces a resolved cell into a non-negative finite float. Missing,
// non-numeric, negative and non-finite values all coerce to 0 so a single bad
// cell never poisons an aggregate.
func asHours(v any) float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// asGate applies the single truth table for the inconsistent boolean
// encodings of checkbox columns: true, numeric 1 and "true" mean on,
// everything else means off.
func asGate(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val == 1
	case int:
		return val == 1
	case int64:
		return val == 1
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
