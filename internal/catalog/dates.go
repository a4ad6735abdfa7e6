package catalog

import (
	"time"

	"tvcatalog/internal/tvmaze"
)

// DateLayout is the calendar date format used by providers and records.
const DateLayout = "2006-01-02"

// unsetAirdate is the provider's placeholder for an unknown air date.
const unsetAirdate = "0000-00-00"

// PickDate returns the effective date of an episode: its air date unless
// unset, else the date part of its air timestamp, else "".
func PickDate(ep tvmaze.Episode) string {
	if ep.Airdate != "" && ep.Airdate != unsetAirdate {
		return ep.Airdate
	}
	if len(ep.Airstamp) >= len(DateLayout) {
		return ep.Airstamp[:len(DateLayout)]
	}
	return ""
}

// Window is the inclusive trailing date range [Start, End].
type Window struct {
	Start string
	End   string
	days  int
	today time.Time
}

// NewWindow returns the window of days calendar days ending on today's UTC
// date. days below 1 is treated as 1.
func NewWindow(today time.Time, days int) Window {
	if days < 1 {
		days = 1
	}
	today = today.UTC()
	anchor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start: anchor.AddDate(0, 0, -(days - 1)).Format(DateLayout),
		End:   anchor.Format(DateLayout),
		days:  days,
		today: anchor,
	}
}

// Contains reports whether date lies inside the window. Undated and future
// dates are outside.
func (w Window) Contains(date string) bool {
	if len(date) != len(DateLayout) {
		return false
	}
	return date >= w.Start && date <= w.End
}

// Days lists the window's dates from today backward.
func (w Window) Days() []string {
	out := make([]string, 0, w.days)
	for i := 0; i < w.days; i++ {
		out = append(out, w.today.AddDate(0, 0, -i).Format(DateLayout))
	}
	return out
}

// Len returns the number of days in the window.
func (w Window) Len() int {
	return w.days
}

// ParseDay parses a YYYY-MM-DD date as UTC midnight.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}
