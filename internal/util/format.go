package util //nolint:revive // package name util hosts shared formatting helpers used by the admin CLI

import "time"

// FormatDuration formats a run duration for display.
// Returns "-" for zero or negative durations and truncates to milliseconds otherwise.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}
