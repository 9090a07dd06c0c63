package utils

import (
	"math"
	"strconv"
	"strings"
)

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParsePriceDisplay extracts a numeric amount from a formatted price string
// such as "$12.50", "Rp 12.000" or "1,299.00". Returns 0 when nothing
// numeric can be recovered.
func ParsePriceDisplay(display string) float64 {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	raw := b.String()
	if raw == "" {
		return 0
	}

	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// The rightmost separator is the decimal point; the other is a
		// thousands separator.
		if lastDot > lastComma {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		}
	case lastComma >= 0:
		// A single comma followed by exactly two digits reads as decimals;
		// anything else is grouping.
		if len(raw)-lastComma-1 == 2 && strings.Count(raw, ",") == 1 {
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastDot >= 0:
		// Dots in groups of three are grouping ("12.000" in IDR displays);
		// more than one dot is always grouping.
		if strings.Count(raw, ".") > 1 {
			raw = strings.ReplaceAll(raw, ".", "")
		} else if len(raw)-lastDot-1 == 3 && lastDot <= 3 {
			raw = strings.ReplaceAll(raw, ".", "")
		}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
