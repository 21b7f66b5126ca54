// Package schedule handles calendar-date arithmetic for the booking
// grid. Dates cross the package boundary as YYYY-MM-DD strings.
package schedule

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Range returns every calendar date from start to end inclusive, in
// ascending order. An unparseable endpoint or start after end yields
// nil rather than an error; the caller renders an empty grid.
func Range(start, end string) []string {
	from, err := ParseDate(start)
	if err != nil {
		return nil
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil
	}
	if from.After(to) {
		return nil
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// Span returns the number of days in Range(start, end).
func Span(start, end string) int {
	from, err := ParseDate(start)
	if err != nil {
		return 0
	}
	to, err := ParseDate(end)
	if err != nil {
		return 0
	}
	if from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// FormatDay renders a date as a short human label ("Mon, Jan 2").
// Falls back to the raw string if it does not parse.
func FormatDay(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return d.Format("Mon, Jan 2")
}
