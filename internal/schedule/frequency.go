// Package schedule computes issue dates of recurring invoices.
//
// All dates are civil dates represented as time.Time at midnight UTC; the time-of-day and
// location of inputs are discarded.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of issue dates.
const DateLayout = "2006-01-02"

var ErrUnknownFrequency = errors.New("unknown frequency")

type Frequency string

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// ParseFrequency validates s against the known frequencies.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	return f.WeekBased() || f.MonthBased()
}

// WeekBased reports whether the period is a fixed number of days. Only these frequencies
// carry a day of week.
func (f Frequency) WeekBased() bool {
	return f == Weekly || f == Biweekly
}

// MonthBased reports whether the period is a number of calendar months. Only these
// frequencies carry a day of month.
func (f Frequency) MonthBased() bool {
	return f == Monthly || f == Quarterly || f == Yearly
}

func (f Frequency) periodDays() int {
	switch f {
	case Weekly:
		return 7
	case Biweekly:
		return 14
	}
	return 0
}

func (f Frequency) periodMonths() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Yearly:
		return 12
	}
	return 0
}

// Date builds a civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day of t, keeping the calendar date as seen in t's location.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today returns the current date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Truncate(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves t by n calendar months. When the day does not exist in the target month
// the last day of that month is used (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	if last := DaysIn(year, month); d > last {
		d = last
	}
	return Date(year, month, d)
}

// clampDay sets the day of t to min(day, last day of t's month).
func clampDay(t time.Time, day int) time.Time {
	y, m, _ := t.Date()
	if last := DaysIn(y, m); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date(y, m, day)
}

// NextIssueDate advances anchor by whole periods of f until it is strictly after today.
// An anchor that already lies after today is returned as is. For month-based frequencies a
// non-nil dayOfMonth is re-applied after every step, clamped to the length of the month.
func NextIssueDate(f Frequency, anchor, today time.Time, dayOfMonth *int) (time.Time, error) {
	if !f.Valid() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, string(f))
	}

	anchor = Truncate(anchor)
	today = Truncate(today)
	if anchor.After(today) {
		return anchor, nil
	}

	if f.WeekBased() {
		period := f.periodDays()
		elapsed := daysBetween(anchor, today)
		steps := elapsed/period + 1
		return anchor.AddDate(0, 0, steps*period), nil
	}

	step := f.periodMonths()
	next := anchor
	// Each step moves at least 28 days forward, so this runs at most
	// months(anchor, today)/step + 1 times.
	for !next.After(today) {
		next = AddMonths(next, step)
		if dayOfMonth != nil {
			next = clampDay(next, *dayOfMonth)
		}
	}
	return next, nil
}

// Preview lists the next count issue dates following anchor.
func Preview(f Frequency, anchor, today time.Time, dayOfMonth *int, count int) ([]time.Time, error) {
	dates := make([]time.Time, 0, count)
	if count <= 0 {
		return dates, nil
	}

	next, err := NextIssueDate(f, anchor, today, dayOfMonth)
	if err != nil {
		return nil, err
	}
	dates = append(dates, next)
	for len(dates) < count {
		next, err = NextIssueDate(f, next, next, dayOfMonth)
		if err != nil {
			return nil, err
		}
		dates = append(dates, next)
	}
	return dates, nil
}

const secondsPerDay = 24 * 60 * 60

// daysBetween counts calendar days between two UTC-midnight dates. It holds for spans
// longer than a time.Duration can represent.
func daysBetween(from, to time.Time) int {
	return floorDiv(int(to.Unix()), secondsPerDay) - floorDiv(int(from.Unix()), secondsPerDay)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
