package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// FormatRoundedUnit renders a duration in its largest whole unit: 42s, 5m, 3h, 2d.
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}

// FormatAge describes how long ago t was relative to now.
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Second && d > -time.Second {
		return "just now"
	}
	if d < 0 {
		return "in " + FormatRoundedUnit(int64(-d/time.Second))
	}
	return FormatRoundedUnit(int64(d/time.Second)) + " ago"
}

// Preview collapses whitespace runs to single spaces and cuts s to max runes,
// marking the cut with an ellipsis.
func Preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
