package textutil

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label title-cases a catalog value such as "hard bop" or "cool_jazz" for
// display. Empty input renders as fallback.
func Label(value, fallback string) string {
	value = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(value))
	if value == "" {
		return fallback
	}
	return cases.Title(language.Und).String(strings.Join(strings.Fields(value), " "))
}

// Percent renders a value that is already on a 0-100 scale with one decimal.
func Percent(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}

// Truncate shortens s to at most limit runes, marking the cut with an
// ellipsis.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

var sparkBars = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters scaled between the
// series minimum and maximum. A flat series renders at mid height.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	var b strings.Builder
	top := len(sparkBars) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(top))
		}
		b.WriteRune(sparkBars[idx])
	}
	return b.String()
}
