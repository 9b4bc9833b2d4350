package values

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	truthyTokens = tokenSet("1", "ON", "T", "TRUE", "X", "Y", "YES")
	falsyTokens  = tokenSet("0", "OFF", "F", "FALSE", "N", "NO", "")
)

// leading numeric prefix, whitespace allowed in front, anything allowed after
var numericPrefix = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)

func tokenSet(tokens ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// scalarString renders a scalar. Booleans render as true/false.
func scalarString(v any) (string, bool) {
	if !isScalar(v) {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// nativeInt converts any integer kind, saturating at the int bounds.
func nativeInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return clampInt64(x), true
	case uint:
		return clampUint64(uint64(x)), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return clampUint64(uint64(x)), true
	case uint64:
		return clampUint64(x), true
	}
	return 0, false
}

func nativeFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

func clampInt64(v int64) int {
	switch {
	case v > math.MaxInt:
		return math.MaxInt
	case v < math.MinInt:
		return math.MinInt
	}
	return int(v)
}

func clampUint64(v uint64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}

// truncFloat truncates toward zero; NaN and infinities become 0.
func truncFloat(f float64) int {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// toFloat is the permissive numeric cast: non numeric strings become 0.
func toFloat(v any) (float64, bool) {
	if f, ok := nativeFloat(v); ok {
		return f, true
	}
	if i, ok := nativeInt(v); ok {
		return float64(i), true
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		return parseFloatPrefix(x), true
	case json.Number:
		return parseFloatPrefix(string(x)), true
	}
	return 0, false
}

// toInt is the permissive integer cast: floats truncate, non numeric
// strings become 0.
func toInt(v any) (int, bool) {
	if i, ok := nativeInt(v); ok {
		return i, true
	}
	if f, ok := nativeFloat(v); ok {
		return truncFloat(f), true
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		return parseIntPrefix(x), true
	case json.Number:
		return parseIntPrefix(string(x)), true
	}
	return 0, false
}

func parseFloatPrefix(s string) float64 {
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	// out of range values come back as ±Inf which is what we want
	f, _ := strconv.ParseFloat(strings.TrimSpace(m), 64)
	return f
}

func parseIntPrefix(s string) int {
	m := strings.TrimSpace(numericPrefix.FindString(s))
	if m == "" {
		return 0
	}
	if strings.ContainsAny(m, ".eE") {
		f, _ := strconv.ParseFloat(m, 64)
		return truncFloat(f)
	}
	i, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		if strings.HasPrefix(m, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return clampInt64(i)
}
