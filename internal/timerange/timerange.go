// Package timerange defines the named reporting windows offered by the bot.
package timerange

import (
	"strings"
	"time"
)

// Range is an inclusive window of time.
type Range struct {
	Start time.Time
	End   time.Time
}

// Definition is a named, relative time range.
type Definition struct {
	Name         string
	SentenceName string

	// Get resolves the range relative to now, in now's location.
	Get func(now time.Time) Range

	// Progress reports how far through r now is, in [0, 1]. Nil for ranges
	// that lie entirely in the past.
	Progress func(r Range, now time.Time) float64
}

// ElapsedFraction is the default progress function.
func ElapsedFraction(r Range, now time.Time) float64 {
	total := r.End.Sub(r.Start)
	if total <= 0 {
		return 1
	}
	p := float64(now.Sub(r.Start)) / float64(total)
	if p > 1 {
		return 1
	}
	return p
}

const lastNano = 999_999_999

func startOfDay(t time.Time, offsetDays int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+offsetDays, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time, offsetDays int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+offsetDays, 23, 59, 59, lastNano, t.Location())
}

// Definitions lists the ranges in display order; the first is the default.
var Definitions = []Definition{
	{
		Name:         "This Month",
		SentenceName: "this month",
		Get: func(now time.Time) Range {
			y, m, _ := now.Date()
			return Range{
				Start: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()),
				End:   time.Date(y, m+1, 0, 23, 59, 59, lastNano, now.Location()),
			}
		},
		Progress: ElapsedFraction,
	},
	{
		Name:         "This Week",
		SentenceName: "this week",
		Get: func(now time.Time) Range {
			// Weeks start on Monday.
			offset := (int(now.Weekday()) + 6) % 7
			return Range{Start: startOfDay(now, -offset), End: endOfDay(now, 6-offset)}
		},
		Progress: ElapsedFraction,
	},
	{
		Name:         "This Year",
		SentenceName: "this year",
		Get: func(now time.Time) Range {
			y := now.Year()
			return Range{
				Start: time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location()),
				End:   time.Date(y, time.December, 31, 23, 59, 59, lastNano, now.Location()),
			}
		},
		Progress: ElapsedFraction,
	},
	{
		Name:         "Today",
		SentenceName: "today",
		Get: func(now time.Time) Range {
			return Range{Start: startOfDay(now, 0), End: endOfDay(now, 0)}
		},
	},
	{
		Name:         "Yesterday",
		SentenceName: "yesterday",
		Get: func(now time.Time) Range {
			return Range{Start: startOfDay(now, -1), End: endOfDay(now, -1)}
		},
	},
	{
		Name:         "Last 7 Days",
		SentenceName: "the last 7 days",
		Get: func(now time.Time) Range {
			return Range{Start: startOfDay(now, -7), End: endOfDay(now, 0)}
		},
	},
	{
		Name:         "Last 30 Days",
		SentenceName: "the last 30 days",
		Get: func(now time.Time) Range {
			return Range{Start: startOfDay(now, -30), End: endOfDay(now, 0)}
		},
	},
}

// Lookup returns the definition called name, or the default when name is
// empty or unknown.
func Lookup(name string) Definition {
	for _, d := range Definitions {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return Definitions[0]
}

// Names returns the names of the definitions containing query, case-insensitively.
func Names(query string) []string {
	q := strings.ToLower(query)
	var out []string
	for _, d := range Definitions {
		if strings.Contains(strings.ToLower(d.Name), q) {
			out = append(out, d.Name)
		}
	}
	return out
}
