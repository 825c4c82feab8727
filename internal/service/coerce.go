package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Numeric item fields are normalized, never rejected: absent, malformed,
// non-finite, and negative inputs all become 0. Clients historically sent
// prices and quantities as strings ("19.99", "3") as often as numbers, and
// the API accepted both, so this quirk is preserved deliberately.

// CoercePrice normalizes a raw JSON value to a non-negative price
func CoercePrice(raw json.RawMessage) float64 {
	f := coerceFloat(raw)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// CoerceQuantity normalizes a raw JSON value to a non-negative integer count.
// Values beyond the INTEGER column range normalize to 0 like any other
// garbage input.
func CoerceQuantity(raw json.RawMessage) int {
	f := coerceFloat(raw)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func coerceFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return f
		}
	}

	return 0
}
