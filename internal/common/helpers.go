// Package common: helpers.go has the small date utilities used across the
// project (ledger dates are stored day-granular, reports bucket by month).
package common

import "time"

// DateOnly truncates t to midnight in its own location. Ledger entry dates
// and report filters compare at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthAbbrev returns the 3-letter English abbreviation for a calendar
// month (1..12), e.g. 1 -> "Jan". Matches time.Month's short names, which
// is the key format of the monthly earnings report.
func MonthAbbrev(month int) string {
	return time.Month(month).String()[:3]
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDate renders a day-granular date the way the API exposes it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD query parameter.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
