package shelf

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/five82/shelf/internal/booktracker"
)

const dayLayout = "2006-01-02"

// Day is a calendar date in YYYY-MM-DD form. String order is date order.
type Day string

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Today returns the current date in loc, or UTC when loc is nil.
func Today(now time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return DayOf(now.In(loc))
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(value string) (Day, error) {
	value = strings.TrimSpace(value)
	if _, err := time.Parse(dayLayout, value); err != nil {
		return "", fmt.Errorf("parse day %q: %w", value, err)
	}
	return Day(value), nil
}

// Valid reports whether d is a real calendar date.
func (d Day) Valid() bool {
	_, err := time.Parse(dayLayout, string(d))
	return err == nil
}

// AddDays shifts d by n calendar days. Invalid days are returned unchanged.
func (d Day) AddDays(n int) Day {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return d
	}
	return DayOf(t.AddDate(0, 0, n))
}

func (d Day) String() string {
	return string(d)
}

// Daily maps calendar days to pages read that day.
type Daily map[Day]int

// DayTotal is one entry of a Daily map.
type DayTotal struct {
	Day   Day `json:"day" yaml:"day"`
	Pages int `json:"pages" yaml:"pages"`
}

// DailyTotals sums session page deltas per calendar day of the session's
// start time. Negative deltas count as zero and sessions without a
// recognizable date are skipped.
func DailyTotals(sessions []booktracker.ReadingSession) Daily {
	daily := make(Daily)
	for _, s := range sessions {
		day, ok := sessionDay(s.StartTime)
		if !ok {
			continue
		}
		daily[day] += max(s.PagesRead, 0)
	}
	return daily
}

// SortedDays returns the entries of daily in ascending date order.
func SortedDays(daily Daily) []DayTotal {
	out := make([]DayTotal, 0, len(daily))
	for day, pages := range daily {
		out = append(out, DayTotal{Day: day, Pages: pages})
	}
	slices.SortFunc(out, func(a, b DayTotal) int {
		return strings.Compare(string(a.Day), string(b.Day))
	})
	return out
}

// sessionDay takes the date as written in the timestamp, before any time
// component, so offsets do not move a session to another day.
func sessionDay(startTime string) (Day, bool) {
	value := strings.TrimSpace(startTime)
	if i := strings.IndexAny(value, "T "); i >= 0 {
		value = value[:i]
	}
	day, err := ParseDay(value)
	if err != nil {
		return "", false
	}
	return day, true
}
