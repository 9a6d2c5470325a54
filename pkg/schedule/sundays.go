// Package schedule enumerates the service dates of a calendar month.
// Services happen on Sundays; special mid-week services are represented as
// special days, not extra service dates.
package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// SundaysInMonth returns every Sunday of the given calendar month in
// ascending order, at midnight UTC.
func SundaysInMonth(year, month int) ([]time.Time, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SU},
		Dtstart:   first,
		Until:     last,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build sunday rule: %w", err)
	}

	return rule.All(), nil
}

// NormalizeDate truncates a timestamp to its calendar date at midnight UTC.
// Service dates are compared by exact calendar date throughout.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a service date as its canonical yyyy-mm-dd lookup key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
