package dateutil

import (
	"fmt"
	"time"
)

// MonthKeyLayout is the layout of a month key ("2025-03").
const MonthKeyLayout = "2006-01"

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns midnight UTC on the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// IsMonthAligned reports whether start is the first day of a month and end
// the last day of the same month.
func IsMonthAligned(start, end time.Time) bool {
	if !SameMonth(start, end) {
		return false
	}
	return start.Day() == 1 && end.Day() == MonthEnd(end).Day()
}

// MonthsBetween counts the calendar months in [from, to], both inclusive.
// It returns 0 when to is before from.
func MonthsBetween(from, to time.Time) int {
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month()) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Months lists the first day of every month in [from, to] in ascending order.
func Months(from, to time.Time) []time.Time {
	n := MonthsBetween(from, to)
	out := make([]time.Time, 0, n)
	cur := MonthStart(from)
	for i := 0; i < n; i++ {
		out = append(out, cur.AddDate(0, i, 0))
	}
	return out
}

// MonthKey formats the month of t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseMonth parses "YYYY-MM" or "YYYY-MM-DD" and returns the month start.
func ParseMonth(s string) (time.Time, error) {
	if t, err := time.Parse(MonthKeyLayout, s); err == nil {
		return MonthStart(t), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthStart(t), nil
}

// FiscalYear returns the payroll fiscal year of t. French payroll years
// follow the calendar year.
func FiscalYear(t time.Time) int {
	return t.Year()
}

// FiscalYearBounds returns [start, end) of a fiscal year.
func FiscalYearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
