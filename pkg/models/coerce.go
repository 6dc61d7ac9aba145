package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceNumber converts the untyped score/credit values a language model may
// emit (JSON numbers, numeric strings, integers) into a finite float64. The
// second return value is false when the value is not numeric; callers drop
// such records rather than defaulting them.
func CoerceNumber(value interface{}) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
