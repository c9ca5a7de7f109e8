package exporter

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat writes the shortest text that parses back to f. Non-finite
// values use the spelling spreadsheet tools and pandas read back.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// parseFloat accepts anything FormatFloat writes.
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// cellValue returns a workbook-safe value; non-finite floats become text.
func cellValue(f float64) interface{} {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return FormatFloat(f)
	}
	return f
}
