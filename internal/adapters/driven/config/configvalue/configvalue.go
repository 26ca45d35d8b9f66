// Package configvalue decodes loosely typed settings values. TOML yields
// int64 and float64, JSON yields float64, and callers set plain Go values, so
// every config store reads through the same conversions.
package configvalue

import "math"

// String returns v when it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int when it holds a whole number.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n)
		}
	}
	return 0
}

// Float returns v as a float64, widening integers so "temperature = 1"
// reads as 1.0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	return 0
}

// Removes reports whether setting v deletes the key instead of storing it.
func Removes(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
