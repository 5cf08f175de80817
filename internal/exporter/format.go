package exporter

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat writes the shortest exact representation, keeping a decimal
// point on whole numbers. NaN becomes an empty cell.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) {
		s += ".0"
	}
	return s
}

// formatInt formats a count for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// parseCell converts numeric cells back to float64 for typed workbook cells.
func parseCell(s string) interface{} {
	if s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
