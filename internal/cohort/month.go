// Package cohort implements the cohort aggregation engine: acquisition-cohort
// retention tables keyed by month offset and date-of-service waterfall
// matrices keyed by calendar payment month.
package cohort

import (
	"fmt"
	"time"
)

// Month is a calendar-month key in YYYY-MM form. Month keys sort
// chronologically under plain string comparison.
type Month string

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// Time returns the first day of the month in UTC. Invalid keys return the
// zero time and false.
func (m Month) Time() (time.Time, bool) {
	var year, mon int
	if _, err := fmt.Sscanf(string(m), "%4d-%2d", &year, &mon); err != nil {
		return time.Time{}, false
	}
	if mon < 1 || mon > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(mon), 1, 0, 0, 0, 0, time.UTC), true
}

// MonthsBetween returns the signed whole-month difference from a to b.
// MonthsBetween("2024-01", "2024-03") is 2.
func MonthsBetween(a, b Month) int {
	at, aok := a.Time()
	bt, bok := b.Time()
	if !aok || !bok {
		return 0
	}
	return (bt.Year()-at.Year())*12 + int(bt.Month()) - int(at.Month())
}
