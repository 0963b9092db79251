package ingest

import (
	"math"
	"strconv"
	"strings"
)

// currencyGlyph is stripped from textual prices before parsing.
const currencyGlyph = "₺"

// ParsePrice normalizes a raw cell value into a price.
//
// nil, empty and unparseable values yield nil. Numeric values are converted directly.
// Strings lose the lira sign and every comma before parsing, so "1,250₺" becomes 1250.
// NaN, infinities and negative amounts are rejected as well. ParsePrice never fails.
func ParsePrice(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.ReplaceAll(x, currencyGlyph, "")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	return &f
}
