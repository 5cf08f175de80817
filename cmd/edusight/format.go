package main

import (
	"fmt"
	"math"
	"strconv"
)

func formatInt(n int) string {
	return strconv.Itoa(n)
}

func formatRange(lo, hi float64, decimals int) string {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return "N/A"
	}
	return fmt.Sprintf("%.*f - %.*f", decimals, lo, decimals, hi)
}
