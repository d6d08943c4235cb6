package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	minutesPerHour  = 60
	minutesPerDay   = 24 * minutesPerHour
	minutesPerMonth = 30 * minutesPerDay
	minutesPerYear  = 365 * minutesPerDay
)

// TimeAgo formats t relative to the package clock, e.g. "5 minutes ago".
func TimeAgo(t time.Time) string {
	return FormatRelative(t, clock.Now())
}

// FormatRelative describes how long before now t was. Buckets round to the
// nearest unit; times in the future read as "less than a minute ago".
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	secs := d.Seconds()
	mins := int(math.Round(secs / 60))

	switch {
	case secs < 30:
		return "less than a minute ago"
	case mins < 2:
		return "1 minute ago"
	case mins < 45:
		return fmt.Sprintf("%d minutes ago", mins)
	case mins < 90:
		return "about 1 hour ago"
	case mins < minutesPerDay:
		return fmt.Sprintf("about %d hours ago", roundDiv(mins, minutesPerHour))
	case mins < 42*minutesPerHour:
		return "1 day ago"
	case mins < minutesPerMonth:
		return fmt.Sprintf("%d days ago", roundDiv(mins, minutesPerDay))
	case mins < 2*minutesPerMonth:
		return plural("about %d month ago", "about %d months ago", roundDiv(mins, minutesPerMonth))
	case mins < minutesPerYear:
		return fmt.Sprintf("%d months ago", roundDiv(mins, minutesPerMonth))
	default:
		return plural("about %d year ago", "about %d years ago", mins/minutesPerYear)
	}
}

func roundDiv(n, d int) int {
	return int(math.Round(float64(n) / float64(d)))
}

func plural(one, many string, n int) string {
	if n == 1 {
		return fmt.Sprintf(one, n)
	}
	return fmt.Sprintf(many, n)
}
