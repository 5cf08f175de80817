package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var numberReplacer = strings.NewReplacer("，", "", ",", "", "．", ".")

// CleanNumber turns a loosely formatted workbook value into a float.
// Thousands separators (ASCII and full-width) are removed, the full-width
// period becomes a decimal point and every other non-digit is dropped.
// Anything that still fails to parse, including the empty string, is 0.
func CleanNumber(s string) float64 {
	s = strings.TrimSpace(numberReplacer.Replace(s))

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// CleanNumberCell applies CleanNumber to an arbitrary cell value.
func CleanNumberCell(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return CleanNumber(x)
	case float64:
		return CleanNumber(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return CleanNumber(strconv.FormatFloat(float64(x), 'f', -1, 32))
	default:
		return CleanNumber(fmt.Sprint(x))
	}
}

// ToNumeric parses s as a float and returns NaN when it is not a number.
func ToNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParsePercentage reads values such as "85.5%", "85.5" or "N/A".
// The second result is false when the value is missing.
func ParsePercentage(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, "NaN") {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(s, "%")), 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}
