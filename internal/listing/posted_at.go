package listing

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// FormatPostedAt renders the age of created relative to now in whole days:
// "today", "N days ago", "N weeks ago", "N months ago" (30-day months) or
// "N years ago" (365-day years). Timestamps in the future read as "today".
func FormatPostedAt(created, now time.Time) string {
	days := int(now.Sub(created) / day)
	if days < 0 {
		days = 0
	}

	switch {
	case days == 0:
		return "today"
	case days < 7:
		return plural(days, "day")
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
