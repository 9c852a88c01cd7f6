package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DayKey formats t as a calendar date in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// WeekRange returns the Sunday and Saturday of the week holding day.
func WeekRange(day time.Time) (string, string) {
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start.Format(DateLayout), start.AddDate(0, 0, 6).Format(DateLayout)
}

// DaysBetween lists every date from..to inclusive.
func DaysBetween(from, to time.Time) []string {
	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}
