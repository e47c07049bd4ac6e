package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders seconds with a single rounded unit: 45s, 12m, 3h
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatDuration renders a duration as hours and minutes: 2h05m, 45m, 30s
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	seconds := int64(d / time.Second)
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}

// Ago renders how long ago t was, relative to now
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return FormatRoundedUnit(int64(now.Sub(t)/time.Second)) + " ago"
}
