package display

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Percentage returns used/limit as a percentage rounded to one decimal.
// A zero or negative limit yields 0.0 rather than dividing by zero.
func Percentage(used, limit float64) float64 {
	if limit <= 0 {
		return 0.0
	}
	pct := used / limit * 100
	return float64(int(pct*10+0.5)) / 10
}

// FormatQuota renders a used/limit pair as "595/40000 (1.5%)".
func FormatQuota(used, limit float64) string {
	return fmt.Sprintf("%s/%s (%.1f%%)", formatNumber(used), formatNumber(limit), Percentage(used, limit))
}

// FormatCurrencyCents renders a cent amount as dollars with four decimal
// places, matching the dashboard's per-request cost display.
func FormatCurrencyCents(cents float64) string {
	return fmt.Sprintf("$%.4f", cents/100)
}

// FormatTokenCount renders a token count with thousands separators.
func FormatTokenCount(n int64) string {
	return humanize.Comma(n)
}

// FormatEventTime renders an event timestamp in local time.
func FormatEventTime(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Local().Format("Jan 2 15:04:05")
}

// formatNumber renders a float without a fractional part when it is whole.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatAge formats a duration as a compact human-readable age string.
func formatAge(d time.Duration) string {
	if d.Hours() >= 24 {
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	if d.Hours() >= 1 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	if d.Minutes() >= 1 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return "<1m"
}
